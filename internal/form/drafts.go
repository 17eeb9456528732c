package form

import (
	"sort"
	"strings"

	"catalogconsole/internal/apperr"
	"catalogconsole/internal/domain"
	"catalogconsole/internal/validate"
)

// labels turn validator field paths into operator-facing names.
var labels = map[string]string{
	"title":        "Title",
	"image":        "Image",
	"video":        "Video",
	"pdf":          "PDF",
	"categoryId":   "Category",
	"modelNo":      "Model No",
	"categoryType": "Category type",
	"categoryRef":  "Category / Subcategory",
	"description":  "Description",
}

// checked runs the validator and rewrites failures as "<Label> <problem>".
// The first message in order becomes the toast text.
func checked(draft any, order ...string) error {
	err := validate.Struct(draft)
	if err == nil {
		return nil
	}
	typed := apperr.As(err)
	if typed == nil || len(typed.Details()) == 0 {
		return err
	}
	details := map[string]string{}
	keys := make([]string, 0, len(typed.Details()))
	for field, problem := range typed.Details() {
		details[field] = label(field) + " " + problem
		keys = append(keys, field)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i], order), rank(keys[j], order)
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return apperr.New(apperr.CodeValidation, details[keys[0]]).WithDetails(details)
}

func rank(field string, order []string) int {
	for i, f := range order {
		if f == field {
			return i
		}
	}
	return len(order)
}

func label(field string) string {
	i := strings.LastIndex(field, ".")
	l, ok := labels[field[i+1:]]
	switch {
	case !ok:
		return field
	case i < 0:
		return l
	default:
		return l + " (" + field[:i] + ")"
	}
}

type CategoryDraft struct {
	ID    string `json:"-"`
	Title string `json:"title" validate:"required,max=120"`
	Image string `json:"image" validate:"omitempty,media"`
}

func NewCategoryDraft() *CategoryDraft { return &CategoryDraft{} }

func CategoryDraftFrom(c domain.Category) *CategoryDraft {
	return &CategoryDraft{ID: c.ID, Title: c.Title, Image: c.Image}
}

func (d *CategoryDraft) EntityID() string { return d.ID }

func (d *CategoryDraft) Validate() error {
	normalized := *d
	normalized.Title = strings.TrimSpace(d.Title)
	normalized.Image = strings.TrimSpace(d.Image)
	return checked(&normalized, "title", "image")
}

// Payload trims the title and leaves an empty image out.
func (d *CategoryDraft) Payload() domain.CategoryPayload {
	return domain.CategoryPayload{Title: strings.TrimSpace(d.Title), Image: strings.TrimSpace(d.Image)}
}

type SubCategoryDraft struct {
	ID         string `json:"-"`
	Title      string `json:"title" validate:"required,max=120"`
	Image      string `json:"image" validate:"omitempty,media"`
	CategoryID string `json:"categoryId" validate:"required"`
}

func NewSubCategoryDraft() *SubCategoryDraft { return &SubCategoryDraft{} }

func SubCategoryDraftFrom(s domain.SubCategory) *SubCategoryDraft {
	return &SubCategoryDraft{ID: s.ID, Title: s.Title, Image: s.Image, CategoryID: s.CategoryID}
}

func (d *SubCategoryDraft) EntityID() string { return d.ID }

func (d *SubCategoryDraft) Validate() error {
	normalized := *d
	normalized.Title = strings.TrimSpace(d.Title)
	normalized.Image = strings.TrimSpace(d.Image)
	normalized.CategoryID = strings.TrimSpace(d.CategoryID)
	return checked(&normalized, "title", "categoryId", "image")
}

func (d *SubCategoryDraft) Payload() domain.SubCategoryPayload {
	return domain.SubCategoryPayload{
		Title:      strings.TrimSpace(d.Title),
		Image:      strings.TrimSpace(d.Image),
		CategoryID: strings.TrimSpace(d.CategoryID),
	}
}
