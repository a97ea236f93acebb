package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/nameservice"
	"github.com/tranvictor/uns/resolvers"
	"github.com/tranvictor/uns/ui"
)

const treasury = "0x1111111111111111111111111111111111111111"

// expiringBook answers from an address book under the ens id and knows
// when names expire.
type expiringBook struct {
	*resolvers.CustomResolver
	expiry map[string]time.Time
}

func (b expiringBook) Expiry(ctx context.Context, name string) (time.Time, error) {
	return b.expiry[name], nil
}

// run executes the command line against an address book backed service
// and returns what it printed.
func run(t *testing.T, args ...string) (*ui.RecordingUI, error) {
	t.Helper()
	ShowMetadata, NamesFile, WatchOnce, WatchInterval = false, "", false, 0
	config.JSONOutput, config.NoCache = false, false
	config.ChainID, config.CoinType = 0, -1
	t.Setenv("DATABASE_URL", "")

	recorder := ui.NewRecordingUI()
	origUI, origBuild := newUI, buildService
	t.Cleanup(func() { newUI, buildService = origUI, origBuild })
	newUI = func() ui.UI { return recorder }
	buildService = func(ctx context.Context, cfg config.Config, opts ...nameservice.Option) (*nameservice.Service, error) {
		book := resolvers.NewCustomResolver(resolvers.ENSID, nil)
		if err := book.Book().Register("treasury.local", treasury); err != nil {
			return nil, err
		}
		if err := book.Book().Register("soon.eth", treasury); err != nil {
			return nil, err
		}
		svc := nameservice.New(nil, opts...)
		svc.RegisterResolver(resolvers.ENSID, expiringBook{
			CustomResolver: book,
			expiry:         map[string]time.Time{"soon.eth": time.Now().Add(50 * time.Hour)},
		})
		return svc, nil
	}

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.json")))
	err := rootCmd.ExecuteContext(context.Background())
	return recorder, err
}

func TestResolveCommand(t *testing.T) {
	recorder, err := run(t, "resolve", "treasury.local")
	if err != nil {
		t.Fatalf("resolve failed: %s", err)
	}
	if !recorder.HasMessage(treasury) {
		t.Fatalf("address not printed: %+v", recorder.Entries())
	}
}

func TestResolveCommandNotFound(t *testing.T) {
	recorder, err := run(t, "resolve", "treasury.local", "nobody.local")
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if exitCode(err) != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode(err))
	}
	if !recorder.HasMessage("nobody.local: not found") {
		t.Fatalf("missing name not reported: %+v", recorder.Entries())
	}
}

func TestResolveCommandInvalidName(t *testing.T) {
	_, err := run(t, "resolve", "ab")
	if err == nil || errors.Is(err, errNotFound) {
		t.Fatalf("expected an input error, got %v", err)
	}
	if exitCode(err) != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode(err))
	}
}

func TestResolveCommandJSON(t *testing.T) {
	recorder, err := run(t, "resolve", "treasury.local", "--json")
	if err != nil {
		t.Fatalf("resolve failed: %s", err)
	}
	if !strings.Contains(recorder.Output(), `"address":"`+treasury+`"`) {
		t.Fatalf("unexpected json: %s", recorder.Output())
	}
}

func TestReverseCommand(t *testing.T) {
	recorder, err := run(t, "reverse", treasury)
	if err != nil {
		t.Fatalf("reverse failed: %s", err)
	}
	if !recorder.HasMessage("treasury.local") && !recorder.HasMessage("soon.eth") {
		t.Fatalf("name not printed: %+v", recorder.Entries())
	}
}

func TestResolveManyCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "names.txt")
	content := "# team\ntreasury.local\n\nnobody.local\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	recorder, err := run(t, "resolve-many", "soon.eth", "--file", file)
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected not found for nobody.local, got %v", err)
	}
	if !recorder.HasMessage("2 of 3 names resolved") {
		t.Fatalf("summary not printed: %+v", recorder.Entries())
	}
}

func TestResolveManyNeedsNames(t *testing.T) {
	_, err := run(t, "resolve-many")
	if err == nil || errors.Is(err, errNotFound) {
		t.Fatalf("expected an error without names, got %v", err)
	}
}

func TestReadNames(t *testing.T) {
	names, err := readNames(strings.NewReader("  a.eth \n#skip\n\nb.sol\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "a.eth" || names[1] != "b.sol" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestAddrAddAndSearch(t *testing.T) {
	book := filepath.Join(t.TempDir(), "addresses.json")
	t.Setenv("UNS_ADDRESS_BOOK", book)

	if _, err := run(t, "addr", "add", "payroll.local", treasury); err != nil {
		t.Fatalf("addr add failed: %s", err)
	}
	if _, err := os.Stat(book); err != nil {
		t.Fatalf("address book not written: %s", err)
	}
	recorder, err := run(t, "addr", "payrol")
	if err != nil {
		t.Fatalf("addr search failed: %s", err)
	}
	if !recorder.HasMessage("payroll.local") {
		t.Fatalf("entry not found: %+v", recorder.Entries())
	}
}

func TestWatchOnce(t *testing.T) {
	recorder, err := run(t, "watch", "soon.eth", "--once")
	if err != nil {
		t.Fatalf("watch failed: %s", err)
	}
	if !recorder.HasMessage("soon.eth expires in") {
		t.Fatalf("expiring event not printed: %+v", recorder.Entries())
	}
	if len(recorder.Messages("Table")) == 0 {
		t.Fatalf("expiry table not printed: %+v", recorder.Entries())
	}
}

func TestVersionCommand(t *testing.T) {
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), VERSION) {
		t.Fatalf("unexpected output: %s", out.String())
	}
}
