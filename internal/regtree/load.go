// internal/regtree/load.go
package regtree

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// mapFile is the on-disk register map.
//
//	generation: tofino2
//	nodes:
//	  - name: pipes
//	    offset: 0x4000000
//	    count: 4           # numeric children "0".."3"
//	    stride: 0x1000000
//	    children:
//	      - name: mau_scratch
//	        offset: 0x80
//
// Offsets are relative to the parent. Leaf size defaults to 4 bytes.
type mapFile struct {
	Generation string     `yaml:"generation"`
	Nodes      []nodeSpec `yaml:"nodes"`
}

type nodeSpec struct {
	Name     string     `yaml:"name"`
	Offset   uint32     `yaml:"offset"`
	Size     uint32     `yaml:"size"`
	Count    int        `yaml:"count"`
	Stride   uint32     `yaml:"stride"`
	Children []nodeSpec `yaml:"children"`
}

// LoadFile reads a register map from a YAML file.
func LoadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load reads a register map from YAML.
func Load(r io.Reader) (*Tree, error) {
	var mf mapFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&mf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("regtree: decode: %w", err)
	}

	root := &Node{Name: Root, Path: Root, byName: map[string]*Node{}}
	for _, s := range mf.Nodes {
		if err := addChild(root, s, 0); err != nil {
			return nil, err
		}
	}
	root.Size = extent(root)

	return &Tree{Generation: mf.Generation, root: root}, nil
}

func childPath(parent *Node, name string) string {
	if parent.Path == Root {
		return name
	}
	return parent.Path + "." + name
}

func addChild(parent *Node, s nodeSpec, base uint32) error {
	if s.Name == "" {
		return fmt.Errorf("regtree: unnamed node under %s", parent.Path)
	}
	if strings.Contains(s.Name, ".") {
		return fmt.Errorf("regtree: node name %q contains '.'", s.Name)
	}
	if _, dup := parent.byName[s.Name]; dup {
		return fmt.Errorf("regtree: duplicate node %s", childPath(parent, s.Name))
	}
	if s.Count < 0 {
		return fmt.Errorf("regtree: %s: negative count", childPath(parent, s.Name))
	}

	n := &Node{
		Name:   s.Name,
		Path:   childPath(parent, s.Name),
		Offset: base + s.Offset,
		Size:   s.Size,
		byName: map[string]*Node{},
	}

	if s.Count > 0 {
		if err := expandArray(n, s); err != nil {
			return err
		}
	} else {
		for _, c := range s.Children {
			if err := addChild(n, c, n.Offset); err != nil {
				return err
			}
		}
	}

	if n.Size == 0 {
		if n.Leaf() {
			n.Size = 4
		} else {
			n.Size = extent(n)
		}
	}

	parent.Children = append(parent.Children, n)
	parent.byName[n.Name] = n
	return nil
}

// expandArray turns a counted node into numeric children "0".."count-1".
func expandArray(n *Node, s nodeSpec) error {
	elemSize := uint32(4)
	if len(s.Children) == 0 && s.Size != 0 && s.Stride == 0 {
		elemSize = s.Size / uint32(s.Count)
	}

	stride := s.Stride
	if stride == 0 {
		stride = elemSize
	}

	for i := 0; i < s.Count; i++ {
		elem := nodeSpec{
			Name:     strconv.Itoa(i),
			Offset:   uint32(i) * stride,
			Children: s.Children,
		}
		if len(s.Children) == 0 {
			elem.Size = elemSize
		}
		if err := addChild(n, elem, n.Offset); err != nil {
			return err
		}
	}
	return nil
}

// extent is the byte span from n's offset to the end of its last child.
func extent(n *Node) uint32 {
	var end uint32
	for _, c := range n.Children {
		if e := c.Offset + c.Size; e > end {
			end = e
		}
	}
	if end < n.Offset {
		return 0
	}
	return end - n.Offset
}
