package store_test

import (
	"path/filepath"
	"testing"

	"github.com/thistle-tpl/thistle/pkg/store"
	"github.com/thistle-tpl/thistle/pkg/store/storetest"
)

func TestTemplates(t *testing.T) {
	storetest.TestTemplates(t, store.MustTempStore(t))
}

func TestNewStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	st, err := store.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.PutTemplate("x", "<b></b>"); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = store.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if src, err := st.Template("x"); src != "<b></b>" || err != nil {
		t.Errorf("Template(x) after reopening -> (%q, %v)", src, err)
	}
}

func TestNewStore_BadPath(t *testing.T) {
	if _, err := store.NewStore(filepath.Join(t.TempDir(), "no", "such", "dir", "db")); err == nil {
		t.Errorf("NewStore succeeded in a missing directory")
	}
}
