package walletloader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetWallets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.txt")
	content := `# team wallets
0x1111111111111111111111111111111111111111

  0x2222222222222222222222222222222222222222  
0X1111111111111111111111111111111111111111
not-hex-but-kept
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var logged int
	loader := NewWalletFileLoader(path, func(msg string, args ...any) { logged++ })
	wallets, err := loader.GetWallets()
	if err != nil {
		t.Fatalf("GetWallets: %v", err)
	}

	want := []string{
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"not-hex-but-kept",
	}
	if len(wallets) != len(want) {
		t.Fatalf("got %d wallets, want %d: %+v", len(wallets), len(want), wallets)
	}
	for i, w := range want {
		if wallets[i].Address != w {
			t.Errorf("wallet %d = %q, want %q", i, wallets[i].Address, w)
		}
	}
	if logged == 0 {
		t.Error("expected log calls")
	}
}

func TestGetWalletsMissingFile(t *testing.T) {
	loader := NewWalletFileLoader(filepath.Join(t.TempDir(), "nope.txt"), nil)
	if _, err := loader.GetWallets(); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
