package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vali/pkg/adapters/memory"
	"github.com/aretw0/vali/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSchemeStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store, err := memory.NewFromDefinitions(map[string][]byte{"user": []byte("name: string")})
	require.NoError(t, err)

	def, err := store.Load(context.Background(), "user")
	require.NoError(t, err)
	def[0] = 'X'

	again, err := store.Load(context.Background(), "user")
	require.NoError(t, err)
	assert.Equal(t, "name: string", string(again))
}
