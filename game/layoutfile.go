package game

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// pileFile is one pile of a layout file. Face-down cards sit beneath the
// face-up ones.
type pileFile struct {
	Name string   `yaml:"name"`
	Down []string `yaml:"down,omitempty,flow"`
	Up   []string `yaml:"up,omitempty,flow"`
}

type layoutFile struct {
	Variant string     `yaml:"variant,omitempty"`
	Piles   []pileFile `yaml:"piles"`
}

// ReadLayout decodes a YAML layout file. Piles not listed are empty. The
// variant name recorded in the file, if any, is returned as well.
func ReadLayout(r io.Reader, board *Board) (Layout, string, error) {
	var f layoutFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, "", fmt.Errorf("failed to decode layout: %w", err)
	}

	layout := NewLayout(board.Len())
	for _, pf := range f.Piles {
		i, err := board.Index(pf.Name)
		if err != nil {
			return nil, "", err
		}
		for _, group := range []struct {
			names    []string
			faceDown bool
		}{{pf.Down, true}, {pf.Up, false}} {
			for _, name := range group.names {
				c, err := ParseCard(name, group.faceDown)
				if err != nil {
					return nil, "", fmt.Errorf("pile %s: %w", pf.Name, err)
				}
				layout[i] = append(layout[i], c)
			}
		}
	}
	return layout, f.Variant, nil
}

// WriteLayout encodes a layout in the format read by ReadLayout. A face-down
// card above a face-up one cannot be expressed and is reported as an error.
func WriteLayout(w io.Writer, board *Board, variant string, layout Layout) error {
	f := layoutFile{Variant: variant}
	for i, p := range layout {
		pf := pileFile{Name: board.Name(i)}
		for _, c := range p {
			if c.FaceDown() {
				if len(pf.Up) > 0 {
					return fmt.Errorf("pile %s: face-down %s above a face-up card", pf.Name, c.Name())
				}
				pf.Down = append(pf.Down, c.Name())
			} else {
				pf.Up = append(pf.Up, c.Name())
			}
		}
		f.Piles = append(f.Piles, pf)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	return enc.Close()
}
