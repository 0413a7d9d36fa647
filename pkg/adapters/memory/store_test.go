package memory_test

import (
	"testing"

	"github.com/aretw0/orca/pkg/adapters/memory"
	"github.com/aretw0/orca/pkg/ports"
)

var (
	_ ports.StateStore   = (*memory.Store)(nil)
	_ ports.ContactStore = (*memory.ContactStore)(nil)
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryContactStore_Contract(t *testing.T) {
	ports.RunContactStoreContract(t, memory.NewContactStore())
}
