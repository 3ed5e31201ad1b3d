package schema

import "fmt"

// Field pairs a name with its Entry.
type Field struct {
	Name  string
	Entry *Entry
}

// Def builds a Field from any declaration accepted by Of. It panics on an
// invalid declaration and is meant for package-level scheme literals.
func Def(name string, spec any) Field {
	return Field{Name: name, Entry: MustOf(spec)}
}

// Scheme is an ordered table of named entries.
// Field order does not change what validates, but it fixes which error is
// reported first. The alias index is computed once, when the scheme is built.
type Scheme struct {
	fields  []Field
	index   map[string]*Entry
	aliases map[string]string
}

// NewScheme builds a scheme from fields in declaration order.
// A duplicated field name replaces the earlier entry in place. Aliases
// shared by several entries resolve to the last one declared.
func NewScheme(fields ...Field) (*Scheme, error) {
	s := &Scheme{
		index:   make(map[string]*Entry, len(fields)),
		aliases: make(map[string]string),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, Usage("", ErrInvalidUsage, "field with empty name")
		}
		if f.Entry == nil {
			return nil, Usage(f.Name, ErrInvalidUsage, "field has no entry")
		}
		if err := f.Entry.check(f.Name); err != nil {
			return nil, err
		}
		if _, dup := s.index[f.Name]; dup {
			for i := range s.fields {
				if s.fields[i].Name == f.Name {
					s.fields[i] = f
				}
			}
		} else {
			s.fields = append(s.fields, f)
		}
		s.index[f.Name] = f.Entry
	}
	for _, f := range s.fields {
		for _, alias := range f.Entry.Alias {
			s.aliases[alias] = f.Name
		}
	}
	return s, nil
}

// MustScheme is NewScheme that panics on error.
func MustScheme(fields ...Field) *Scheme {
	s, err := NewScheme(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the fields in declaration order.
func (s *Scheme) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Len returns the number of fields.
func (s *Scheme) Len() int { return len(s.fields) }

// Get returns the entry declared under name.
func (s *Scheme) Get(name string) (*Entry, bool) {
	e, ok := s.index[name]
	return e, ok
}

// Aliases returns the alias index: alias name to owning entry.
func (s *Scheme) Aliases() map[string]*Entry {
	out := make(map[string]*Entry, len(s.aliases))
	for alias, name := range s.aliases {
		out[alias] = s.index[name]
	}
	return out
}

// Canonical returns the field name an alias resolves to.
func (s *Scheme) Canonical(alias string) (string, bool) {
	name, ok := s.aliases[alias]
	return name, ok
}

// Knows reports whether key is a field or an alias of one.
func (s *Scheme) Knows(key string) bool {
	if _, ok := s.index[key]; ok {
		return true
	}
	_, ok := s.aliases[key]
	return ok
}

func (s *Scheme) String() string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return fmt.Sprintf("Scheme%v", names)
}
