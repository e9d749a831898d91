package rbac

import (
	"reflect"
	"testing"
)

func TestAggregate(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates permissions in first-seen order", func(t *testing.T) {
		t.Parallel()

		roles := []Role{
			{Name: "manager", Permissions: []Permission{{Code: "a"}, {Code: "b"}}},
			{Name: "auditor", Permissions: []Permission{{Code: "b"}, {Code: "c"}}},
		}

		names, perms := Aggregate(roles)

		if want := []string{"manager", "auditor"}; !reflect.DeepEqual(names, want) {
			t.Fatalf("role names = %v, want %v", names, want)
		}
		if want := []string{"a", "b", "c"}; !reflect.DeepEqual(perms, want) {
			t.Fatalf("permissions = %v, want %v", perms, want)
		}
	})

	t.Run("is stable across repeated runs", func(t *testing.T) {
		t.Parallel()

		roles := []Role{
			{Name: "r1", Permissions: []Permission{{Code: "z"}, {Code: "a"}}},
			{Name: "r2", Permissions: []Permission{{Code: "m"}, {Code: "z"}}},
		}

		firstNames, firstPerms := Aggregate(roles)
		for i := 0; i < 10; i++ {
			names, perms := Aggregate(roles)
			if !reflect.DeepEqual(names, firstNames) || !reflect.DeepEqual(perms, firstPerms) {
				t.Fatalf("run %d produced %v/%v, want %v/%v", i, names, perms, firstNames, firstPerms)
			}
		}
		if want := []string{"z", "a", "m"}; !reflect.DeepEqual(firstPerms, want) {
			t.Fatalf("permissions = %v, want input order %v", firstPerms, want)
		}
	})

	t.Run("empty input yields nil slices", func(t *testing.T) {
		t.Parallel()

		names, perms := Aggregate(nil)
		if names != nil || perms != nil {
			t.Fatalf("expected nil results, got %v / %v", names, perms)
		}
	})

	t.Run("role without permissions still contributes its name", func(t *testing.T) {
		t.Parallel()

		names, perms := Aggregate([]Role{{Name: "empty"}})
		if !reflect.DeepEqual(names, []string{"empty"}) {
			t.Fatalf("role names = %v", names)
		}
		if len(perms) != 0 {
			t.Fatalf("permissions = %v, want none", perms)
		}
	})
}

func TestHasPermission(t *testing.T) {
	t.Parallel()

	perms := []string{"booking.create", "booking.approve"}
	if !HasPermission(perms, "booking.approve") {
		t.Fatalf("expected booking.approve to be present")
	}
	if HasPermission(perms, "user.freeze") {
		t.Fatalf("did not expect user.freeze to be present")
	}
}
