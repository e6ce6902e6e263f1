package store

import (
	"context"
	"fmt"
	"strings"

	"zenledger/internal/core"
	applog "zenledger/internal/log"
)

// TagPatch changes the non-nil fields of a tag.
type TagPatch struct {
	Name     *string           `json:"name,omitempty"`
	Color    *string           `json:"color,omitempty"`
	Polarity *core.TagPolarity `json:"type,omitempty"`
}

// AddTag creates a tag with a new id.
func (s *Store) AddTag(ctx context.Context, t core.Tag) (core.Tag, error) {
	t = cloneTag(t)
	t.Name = strings.TrimSpace(t.Name)
	if t.Polarity == "" {
		t.Polarity = core.PolarityExpense
	}
	if t.Color == "" {
		t.Color = core.TagColors[0]
	}
	if err := t.Validate(); err != nil {
		return core.Tag{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.newID()
	next := append(cloneTags(s.tags), t)
	if err := s.write(ctx, SlotTags, next); err != nil {
		return core.Tag{}, err
	}
	s.tags = next
	s.logger.InfoContext(ctx, "Tag added", applog.FieldTagID, t.ID, "name", t.Name)
	return cloneTag(t), nil
}

// UpdateTag renames, recolors or changes the polarity of a tag.
func (s *Store) UpdateTag(ctx context.Context, id string, patch TagPatch) (core.Tag, error) {
	return s.mutateTag(ctx, id, func(t *core.Tag) error {
		if patch.Name != nil {
			t.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Color != nil {
			t.Color = *patch.Color
		}
		if patch.Polarity != nil {
			t.Polarity = *patch.Polarity
		}
		return nil
	})
}

// SetBudget sets the monthly budget limit of a tag; nil removes it.
func (s *Store) SetBudget(ctx context.Context, id string, limit *float64) (core.Tag, error) {
	if limit != nil {
		if err := core.ValidateBudget(*limit); err != nil {
			return core.Tag{}, err
		}
	}
	return s.mutateTag(ctx, id, func(t *core.Tag) error {
		if limit == nil {
			t.BudgetLimit = nil
			return nil
		}
		v := *limit
		t.BudgetLimit = &v
		return nil
	})
}

// AddSubTag appends a sub-tag name to a tag.
func (s *Store) AddSubTag(ctx context.Context, id, name string) (core.Tag, error) {
	name = strings.TrimSpace(name)
	return s.mutateTag(ctx, id, func(t *core.Tag) error {
		if t.HasSubTag(name) {
			return core.ErrDuplicateSubTag
		}
		t.SubTags = append(t.SubTags, name)
		return nil
	})
}

// RemoveSubTag removes a sub-tag name from a tag. Transactions that chose it
// keep their sub-tag entry.
func (s *Store) RemoveSubTag(ctx context.Context, id, name string) (core.Tag, error) {
	return s.mutateTag(ctx, id, func(t *core.Tag) error {
		kept := make([]string, 0, len(t.SubTags))
		for _, sub := range t.SubTags {
			if sub != name {
				kept = append(kept, sub)
			}
		}
		if len(kept) == len(t.SubTags) {
			return fmt.Errorf("sub-tag %q: %w", name, core.ErrNotFound)
		}
		t.SubTags = kept
		return nil
	})
}

// DeleteTag removes a tag. Transactions keep the tag id; aggregation treats
// it as unsorted from then on.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]core.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		if t.ID != id {
			next = append(next, cloneTag(t))
		}
	}
	if len(next) == len(s.tags) {
		return fmt.Errorf("tag %s: %w", id, core.ErrNotFound)
	}
	if err := s.write(ctx, SlotTags, next); err != nil {
		return err
	}
	s.tags = next
	s.logger.InfoContext(ctx, "Tag deleted", applog.FieldTagID, id)
	return nil
}

// ResetTags replaces every tag with the starter pack.
func (s *Store) ResetTags(ctx context.Context) ([]core.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := core.DefaultTags()
	if err := s.write(ctx, SlotTags, next); err != nil {
		return nil, err
	}
	s.tags = next
	s.logger.InfoContext(ctx, "Tags reset to defaults", "tags", len(next))
	return cloneTags(next), nil
}

func (s *Store) mutateTag(ctx context.Context, id string, mutate func(*core.Tag) error) (core.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneTags(s.tags)
	i := -1
	for j := range next {
		if next[j].ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		return core.Tag{}, fmt.Errorf("tag %s: %w", id, core.ErrNotFound)
	}
	if err := mutate(&next[i]); err != nil {
		return core.Tag{}, err
	}
	if err := next[i].Validate(); err != nil {
		return core.Tag{}, err
	}
	if err := s.write(ctx, SlotTags, next); err != nil {
		return core.Tag{}, err
	}
	s.tags = next
	s.logger.InfoContext(ctx, "Tag updated", applog.FieldTagID, id)
	return cloneTag(next[i]), nil
}
