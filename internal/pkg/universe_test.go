/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniverseAddAndQuery(t *testing.T) {
	is := assert.New(t)
	u := NewUniverse()
	is.NoError(u.Add(NewPkg("a", "2.0.0", false)))
	is.NoError(u.Add(NewPkg("a", "1.0.0", true)))
	is.NoError(u.Add(NewPkg("b", "1.0.0", false)))

	is.Equal(3, u.Len())
	is.Equal([]string{"a", "b"}, u.Names())

	versions := u.GetPackagesByName("a")
	is.Len(versions, 2)
	is.Equal("1.0.0", versions[0].Version)
	is.Equal("2.0.0", versions[1].Version)

	is.Equal("1.0.0", u.Installed("a").Version)
	is.Nil(u.Installed("b"))
	is.Equal("2.0.0", u.MaxVersion("a"))
	is.Equal("", u.MaxVersion("nope"))
}

func TestUniverseSingleInstalledInvariant(t *testing.T) {
	is := assert.New(t)
	u := NewUniverse()
	is.NoError(u.Add(NewPkg("a", "1.0.0", true)))
	is.Error(u.Add(NewPkg("a", "2.0.0", true)))
}

func TestUniverseMerge(t *testing.T) {
	is := assert.New(t)
	u := NewUniverse()

	bare := NewPkg("a", "1.0.0", true)
	is.NoError(u.Add(bare))

	rich := NewPkg("a", "1.0.0", false)
	rich.Depends = [][]*Atom{{NewAtom("b")}}
	is.NoError(u.Add(rich))

	got := u.GetPackage("a", "1.0.0")
	is.True(got.Installed, "installed state survives the merge")
	is.Len(got.Depends, 1, "relations fill in from the new entry")
}

func TestUniverseMatching(t *testing.T) {
	is := assert.New(t)
	u := NewUniverse()
	is.NoError(u.Add(NewPkg("a", "1.0.0", false)))
	is.NoError(u.Add(NewPkg("a", "2.0.0", false)))
	is.NoError(u.Add(NewPkg("a", "3.0.0", false)))

	atom, err := ParseAtom("a>=2.0.0")
	is.NoError(err)
	matching := u.Matching(atom)
	is.Len(matching, 2)
	is.Equal("2.0.0", matching[0].Version)
	is.Equal("3.0.0", matching[1].Version)
}

func TestUniverseClone(t *testing.T) {
	is := assert.New(t)
	u := NewUniverse()
	is.NoError(u.Add(NewPkg("a", "1.0.0", true)))

	clone := u.Clone()
	clone.GetPackage("a", "1.0.0").Installed = false
	is.True(u.GetPackage("a", "1.0.0").Installed, "clone does not alias the original")
}

func TestRequestValidate(t *testing.T) {
	is := assert.New(t)

	ok := &Request{
		Install: []*Atom{NewAtom("a")},
		Remove:  []*Atom{NewAtom("b")},
	}
	is.NoError(ok.Validate())

	overlapping := &Request{
		Install: []*Atom{NewAtom("a")},
		Remove:  []*Atom{NewAtom("a")},
	}
	is.Error(overlapping.Validate())
}

func TestRequestPureRemoval(t *testing.T) {
	is := assert.New(t)
	is.True((&Request{Remove: []*Atom{NewAtom("a")}}).PureRemoval())
	is.False((&Request{Install: []*Atom{NewAtom("a")}, Remove: []*Atom{NewAtom("b")}}).PureRemoval())
	is.False((&Request{}).PureRemoval())
}

func TestLoadUniverse(t *testing.T) {
	is := assert.New(t)
	doc := `
packages:
  - name: a
    version: 1.0.0
    installed: true
    depends:
      - ["b>=1.0.0", "c"]
    conflicts: ["d"]
    depopts:
      - ["e"]
  - name: b
    version: 1.0.0
`
	u, err := LoadUniverse([]byte(doc))
	is.NoError(err)
	is.Equal(2, u.Len())

	a := u.GetPackage("a", "1.0.0")
	is.True(a.Installed)
	is.Len(a.Depends, 1)
	is.Len(a.Depends[0], 2)
	is.Equal("b>=1.0.0", a.Depends[0][0].String())
	is.Len(a.Conflicts, 1)
	is.Len(a.DependsOptional, 1)
}

func TestLoadRequest(t *testing.T) {
	is := assert.New(t)
	req, err := LoadRequest([]byte("install: [\"a>=1.0.0\"]\nremove: [\"b\"]\n"))
	is.NoError(err)
	is.Len(req.Install, 1)
	is.Equal("a>=1.0.0", req.Install[0].String())
	is.Len(req.Remove, 1)

	_, err = LoadRequest([]byte("install: [\"a\"]\nremove: [\"a\"]\n"))
	is.Error(err, "install/remove overlap is rejected")
}
