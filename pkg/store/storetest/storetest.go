// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thistle-tpl/thistle/pkg/store/storedefs"
)

func matchErr(e1, e2 error) bool {
	return (e1 == nil && e2 == nil) || (e1 != nil && e2 != nil && e1.Error() == e2.Error())
}

// TestTemplates tests the template functionality of a Store.
func TestTemplates(t *testing.T, store storedefs.Store) {
	if _, err := store.Template("card"); !matchErr(err, storedefs.ErrNoTemplate) {
		t.Errorf("Template(card) on empty store -> error %v, want %v", err, storedefs.ErrNoTemplate)
	}
	if names, err := store.Names(); err != nil || len(names) != 0 {
		t.Errorf("Names() on empty store -> (%v, %v)", names, err)
	}

	for name, src := range map[string]string{
		"card":  "<div>v1</div>",
		"alert": "<p>!</p>",
	} {
		if err := store.PutTemplate(name, src); err != nil {
			t.Errorf("PutTemplate(%q) -> %v", name, err)
		}
	}
	if src, err := store.Template("card"); src != "<div>v1</div>" || err != nil {
		t.Errorf("Template(card) -> (%q, %v)", src, err)
	}
	info1, _ := store.TemplateInfo("card")

	if err := store.PutTemplate("card", "<div>v2</div>"); err != nil {
		t.Errorf("PutTemplate(card) -> %v", err)
	}
	info2, err := store.TemplateInfo("card")
	if err != nil {
		t.Errorf("TemplateInfo(card) -> %v", err)
	}
	if info2.Name != "card" || info2.Source != "<div>v2</div>" {
		t.Errorf("TemplateInfo(card) -> %+v", info2)
	}
	if info2.Revision <= info1.Revision {
		t.Errorf("revision went from %d to %d", info1.Revision, info2.Revision)
	}
	if info2.Updated.IsZero() {
		t.Errorf("update time not recorded")
	}

	names, err := store.Names()
	if diff := cmp.Diff([]string{"alert", "card"}, names); diff != "" || err != nil {
		t.Errorf("Names() (-want +got):\n%s\nerror %v", diff, err)
	}

	if err := store.DelTemplate("alert"); err != nil {
		t.Errorf("DelTemplate(alert) -> %v", err)
	}
	if err := store.DelTemplate("alert"); !matchErr(err, storedefs.ErrNoTemplate) {
		t.Errorf("DelTemplate(alert) again -> %v, want %v", err, storedefs.ErrNoTemplate)
	}
	if _, err := store.Template("alert"); !matchErr(err, storedefs.ErrNoTemplate) {
		t.Errorf("Template(alert) after deletion -> %v", err)
	}
}
