package rbac

import "testing"

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{RoleStudent, "exam:view", true},
		{RoleStudent, "submission:create", true},
		{RoleStudent, "grading:write", false},
		{RoleStudent, "exam:finalize", false},
		{RoleLecturer, "grading:write", true},
		{RoleLecturer, "exam:finalize", true},
		{RoleLecturer, "result:view-own", false},
		{RoleAdmin, "grading:write", true},
		{RoleAdmin, "anything:at-all", true},
		{"", "exam:view", false},
		{"visitor", "exam:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerWildcard(t *testing.T) {
	c := NewChecker(map[string][]string{"ta": {"grading:*"}})
	if !c.Has("ta", "grading:write") {
		t.Fatal("prefix wildcard should match")
	}
	if c.Has("ta", "exam:finalize") {
		t.Fatal("prefix wildcard must not match other prefixes")
	}
	if !c.Any("ta", "exam:finalize", "grading:write") {
		t.Fatal("Any should find the one matching permission")
	}
}
