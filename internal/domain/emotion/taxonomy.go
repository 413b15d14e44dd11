// Package emotion defines the three-level emotion taxonomy and name
// resolution used by aggregation and candle creation.
//
// The taxonomy is main -> mid -> leaf. Candles store a single emotion
// name, which may sit at any level; the Resolver maps any name back to
// its ancestors. Slices keep the tree ordered so traversal and
// resolution are deterministic.
package emotion

import (
	"fmt"
)

// Mid is a cluster of related leaf emotions under a main emotion.
type Mid struct {
	Name   string
	Leaves []string
}

// Main is a top-level emotion and its mid-level clusters.
type Main struct {
	Name string
	Mids []Mid
}

// Taxonomy is the full three-level emotion tree.
type Taxonomy struct {
	Mains []Main
}

// Default returns the production emotion tree.
func Default() Taxonomy {
	return Taxonomy{Mains: []Main{
		{Name: "happy", Mids: []Mid{
			{Name: "playful", Leaves: []string{"amused", "jovial"}},
			{Name: "content", Leaves: []string{"delighted", "blissful"}},
		}},
		{Name: "sad", Mids: []Mid{
			{Name: "grief-cluster", Leaves: []string{"grief", "sorrow", "lonely"}},
			{Name: "despair", Leaves: []string{"depressed"}},
		}},
		{Name: "angry", Mids: []Mid{
			{Name: "irritation", Leaves: []string{"annoyed", "irritated"}},
			{Name: "rage", Leaves: []string{"frustrated", "enraged"}},
		}},
		{Name: "surprised", Mids: []Mid{
			{Name: "wonder", Leaves: []string{"amazed", "astonished"}},
			{Name: "disoriented", Leaves: []string{"shocked", "confused"}},
		}},
		{Name: "disgusted", Mids: []Mid{
			{Name: "revulsion", Leaves: []string{"revolted", "repulsed"}},
			{Name: "disdain", Leaves: []string{"contempt", "aversion"}},
		}},
		{Name: "fearful", Mids: []Mid{
			{Name: "anxiety", Leaves: []string{"anxious", "nervous"}},
			{Name: "terror", Leaves: []string{"scared", "terrified"}},
		}},
		{Name: "tired", Mids: []Mid{
			{Name: "depletion", Leaves: []string{"exhausted", "drained"}},
			{Name: "lethargy", Leaves: []string{"weary", "fatigued"}},
		}},
	}}
}

// Validate rejects empty names and duplicates. Duplicate main names,
// duplicate mid names, and duplicate leaf names are each errors
// regardless of where in the tree they appear; resolution is
// first-match-wins, so a duplicate would silently shadow.
func (t Taxonomy) Validate() error {
	seen := make(map[string]string)

	note := func(name, level string) error {
		if name == "" {
			return fmt.Errorf("%w: empty %s name", ErrInvalidTaxonomy, level)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q appears as both %s and %s", ErrDuplicateName, name, prev, level)
		}
		seen[name] = level
		return nil
	}

	for _, main := range t.Mains {
		if err := note(main.Name, "main"); err != nil {
			return err
		}
		for _, mid := range main.Mids {
			if err := note(mid.Name, "mid"); err != nil {
				return err
			}
			for _, leaf := range mid.Leaves {
				if err := note(leaf, "leaf"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Mains returns the ordered main emotion names.
func (t Taxonomy) MainNames() []string {
	names := make([]string, len(t.Mains))
	for i, m := range t.Mains {
		names[i] = m.Name
	}
	return names
}
