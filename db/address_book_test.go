package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAddressBook(t *testing.T) {
	file := filepath.Join(t.TempDir(), "addresses.json")
	content := `{"Treasury.Team": "0xAbC0000000000000000000000000000000000001", "alice.local": "0xabc0000000000000000000000000000000000002"}`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	book, err := LoadAddressBook(file)
	if err != nil {
		t.Fatalf("LoadAddressBook failed: %s", err)
	}
	if book.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", book.Len())
	}
	addr, found := book.Address("TREASURY.team")
	if !found || addr != "0xAbC0000000000000000000000000000000000001" {
		t.Fatalf("lookup by name failed: %q %v", addr, found)
	}
	name, found := book.Name("abc0000000000000000000000000000000000001")
	if !found || name != "treasury.team" {
		t.Fatalf("lookup by address failed: %q %v", name, found)
	}
}

func TestLoadMissingAddressBook(t *testing.T) {
	book, err := LoadAddressBook(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %s", err)
	}
	if book.Len() != 0 {
		t.Fatalf("expected empty book")
	}
}

func TestRegisterRejectsInvalidName(t *testing.T) {
	book := NewAddressBook()
	if err := book.Register("bad..name", "0x01"); err == nil {
		t.Fatalf("expected invalid name error")
	}
}

func TestSearch(t *testing.T) {
	book := NewAddressBook()
	for name, addr := range map[string]string{
		"treasury.team": "0x01",
		"trading.desk":  "0x02",
		"alice.local":   "0x03",
	} {
		if err := book.Register(name, addr); err != nil {
			t.Fatal(err)
		}
	}
	got := book.Search("tre", 10)
	if len(got) == 0 || got[0].Desc != "treasury.team" {
		t.Fatalf("expected treasury.team first, got %v", got)
	}
	if got := book.Search("t", 1); len(got) != 1 {
		t.Fatalf("limit not applied: %v", got)
	}
}

func TestSaveAddressBook(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "addresses.json")
	book := NewAddressBook()
	if err := book.Register("Vault.local", "0xabc0000000000000000000000000000000000003"); err != nil {
		t.Fatal(err)
	}
	if err := book.Save(file); err != nil {
		t.Fatalf("Save failed: %s", err)
	}
	loaded, err := LoadAddressBook(file)
	if err != nil {
		t.Fatalf("LoadAddressBook failed: %s", err)
	}
	if addr, found := loaded.Address("vault.local"); !found || addr != "0xabc0000000000000000000000000000000000003" {
		t.Fatalf("saved entry not loaded: %q %v", addr, found)
	}
}
