package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"sort"
	"sync"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/namehash"
)

// AddressBook is a local two way mapping between names and addresses.
// Names are stored normalized, addresses in their canonical key form.
type AddressBook struct {
	mu        sync.RWMutex
	byName    map[string]string
	byAddress map[string]string
}

func NewAddressBook() *AddressBook {
	return &AddressBook{
		byName:    map[string]string{},
		byAddress: map[string]string{},
	}
}

// DefaultAddressBookFile is ~/.uns/addresses.json.
func DefaultAddressBookFile() string {
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	return path.Join(usr.HomeDir, ".uns", "addresses.json")
}

// LoadAddressBook reads a JSON object mapping names to addresses. A
// missing file gives an empty book.
func LoadAddressBook(file string) (*AddressBook, error) {
	book := NewAddressBook()
	if file == "" {
		return book, nil
	}
	fi, err := os.Lstat(file)
	if errors.Is(err, fs.ErrNotExist) {
		return book, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading address book %s failed: %w", file, err)
	}
	// if the file is a symlink
	if fi.Mode()&os.ModeSymlink != 0 {
		file, err = os.Readlink(file)
		if err != nil {
			return nil, fmt.Errorf("reading address book %s failed: %w", file, err)
		}
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading address book %s failed: %w", file, err)
	}
	data := map[string]string{}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parsing address book %s failed: %w", file, err)
	}
	for name, addr := range data {
		if err := book.Register(name, addr); err != nil {
			return nil, err
		}
	}
	return book, nil
}

// Register adds or replaces name. The first name registered for an
// address stays its reverse name.
func (b *AddressBook) Register(name, addr string) error {
	normalized, err := namehash.Normalize(name)
	if err != nil {
		return err
	}
	if normalized == "" || addr == "" {
		return fmt.Errorf("address book entry needs both name and address")
	}
	key := unscommon.AddressKey(addr)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byName[normalized] = addr
	if _, found := b.byAddress[key]; !found {
		b.byAddress[key] = normalized
	}
	return nil
}

func (b *AddressBook) Address(name string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	addr, found := b.byName[namehash.Fold(name)]
	return addr, found
}

func (b *AddressBook) Name(addr string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	name, found := b.byAddress[unscommon.AddressKey(addr)]
	return name, found
}

func (b *AddressBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byName)
}

// Entries returns every entry sorted by name.
func (b *AddressBook) Entries() []AddressDesc {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]AddressDesc, 0, len(b.byName))
	for name, addr := range b.byName {
		result = append(result, AddressDesc{Address: addr, Desc: name})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Desc < result[j].Desc })
	return result
}

// Save writes the book as a JSON object of name to address, creating the
// parent directory when needed.
func (b *AddressBook) Save(file string) error {
	b.mu.RLock()
	data := make(map[string]string, len(b.byName))
	for name, addr := range b.byName {
		data[name] = addr
	}
	b.mu.RUnlock()
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	return os.WriteFile(file, content, 0o644)
}
