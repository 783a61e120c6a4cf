// Package layoutcheck verifies that heap/layout's exported offset
// constants still match the byte-exact table they were written from, so
// a future edit to heap/layout can't silently drift the codegen ABI
// without the build noticing.
package layoutcheck

import (
	"fmt"
	"go/constant"
	"go/types"
	"sort"

	"golang.org/x/tools/go/packages"
)

// Mismatch describes one constant whose value disagrees with its
// expected table entry.
type Mismatch struct {
	Name     string
	Expected int64
	Actual   int64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s = %d, want %d", m.Name, m.Actual, m.Expected)
}

// Missing describes an expected constant that importPath does not
// export at all.
type Missing struct {
	Name string
}

func (m Missing) String() string {
	return fmt.Sprintf("%s: not found", m.Name)
}

// CheckOffsets loads importPath and compares every named constant in
// want against the package's actual exported integer constant of the
// same name. It returns every mismatch and missing constant found;
// a nil/empty result means every expected offset matched.
func CheckOffsets(importPath string, want map[string]int64) ([]fmt.Stringer, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes,
	}
	pkgs, err := packages.Load(cfg, importPath)
	if err != nil {
		return nil, fmt.Errorf("layoutcheck: loading %s: %w", importPath, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("layoutcheck: no packages found for %s", importPath)
	}
	if len(pkgs[0].Errors) > 0 {
		return nil, fmt.Errorf("layoutcheck: package errors in %s: %v", importPath, pkgs[0].Errors)
	}
	pkg := pkgs[0]
	if pkg.Types == nil {
		return nil, fmt.Errorf("layoutcheck: no type information for %s", importPath)
	}

	scope := pkg.Types.Scope()

	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []fmt.Stringer
	for _, name := range names {
		obj := scope.Lookup(name)
		if obj == nil {
			results = append(results, Missing{Name: name})
			continue
		}
		c, ok := obj.(*types.Const)
		if !ok {
			results = append(results, Missing{Name: name})
			continue
		}
		actual, ok := constant.Int64Val(c.Val())
		if !ok {
			results = append(results, Missing{Name: name})
			continue
		}
		if expected := want[name]; actual != expected {
			results = append(results, Mismatch{Name: name, Expected: expected, Actual: actual})
		}
	}
	return results, nil
}
