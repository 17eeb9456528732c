package form

import (
	"fmt"
	"strings"

	"catalogconsole/internal/apperr"
	"catalogconsole/internal/domain"
)

type MediaDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image" validate:"omitempty,media"`
	Video       string `json:"video" validate:"omitempty,media"`
	PDF         string `json:"pdf" validate:"omitempty,media"`
}

type PointDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image" validate:"omitempty,media"`
	Video       string `json:"video" validate:"omitempty,media"`
	PDF         string `json:"pdf" validate:"omitempty,media"`
}

type AdvantageTypeDraft struct {
	Title  string       `json:"title"`
	Points []PointDraft `json:"points" validate:"dive"`
}

type AdvantagesDraft struct {
	Image string               `json:"image" validate:"omitempty,media"`
	Video string               `json:"video" validate:"omitempty,media"`
	PDF   string               `json:"pdf" validate:"omitempty,media"`
	Types []AdvantageTypeDraft `json:"type" validate:"dive"`
}

type ProductDraft struct {
	ID            string          `json:"-"`
	ModelNo       string          `json:"modelNo" validate:"required,max=80"`
	CategoryType  string          `json:"categoryType" validate:"oneof=category subcategory"`
	CategoryRef   string          `json:"categoryRef" validate:"required"`
	Description   string          `json:"description"`
	Image         string          `json:"image" validate:"omitempty,media"`
	Video         string          `json:"video" validate:"omitempty,media"`
	PDF           string          `json:"pdf" validate:"omitempty,media"`
	TireKey       string          `json:"product_tire_key_new"`
	Advantages    AdvantagesDraft `json:"advantages"`
	Feature       MediaDraft      `json:"feature"`
	Specification MediaDraft      `json:"specification"`
	Warranty      MediaDraft      `json:"warranty"`
	IsActive      bool            `json:"isActive"`
}

// NewProductDraft is the create default: active, hanging off a subcategory.
func NewProductDraft() *ProductDraft {
	return &ProductDraft{
		CategoryType: domain.CategoryTypeSubCategory,
		IsActive:     true,
		Advantages:   AdvantagesDraft{Types: []AdvantageTypeDraft{}},
	}
}

func ProductDraftFrom(p domain.Product) *ProductDraft {
	d := &ProductDraft{
		ID:            p.ID,
		ModelNo:       p.ModelNo,
		CategoryType:  p.CategoryType,
		CategoryRef:   p.CategoryRef,
		Description:   p.Description,
		Image:         p.Image,
		Video:         p.Video,
		PDF:           p.PDF,
		TireKey:       p.TireKey.ID,
		Feature:       mediaDraft(p.Feature),
		Specification: mediaDraft(p.Specification),
		Warranty:      mediaDraft(p.Warranty),
		IsActive:      p.IsActive,
		Advantages: AdvantagesDraft{
			Image: p.Advantages.Image,
			Video: p.Advantages.Video,
			PDF:   p.Advantages.PDF,
			Types: make([]AdvantageTypeDraft, 0, len(p.Advantages.Types)),
		},
	}
	if d.CategoryType == "" {
		d.CategoryType = domain.CategoryTypeSubCategory
	}
	for _, t := range p.Advantages.Types {
		td := AdvantageTypeDraft{Title: t.Title, Points: make([]PointDraft, 0, len(t.Points))}
		for _, pt := range t.Points {
			td.Points = append(td.Points, PointDraft(pt))
		}
		d.Advantages.Types = append(d.Advantages.Types, td)
	}
	return d
}

func mediaDraft(m domain.Media) MediaDraft { return MediaDraft(m) }

func (d *ProductDraft) EntityID() string { return d.ID }

func (d *ProductDraft) Validate() error {
	normalized := *d
	normalized.ModelNo = strings.TrimSpace(d.ModelNo)
	normalized.CategoryRef = strings.TrimSpace(d.CategoryRef)
	return checked(&normalized, "modelNo", "categoryType", "categoryRef")
}

func (d *ProductDraft) Payload() domain.ProductPayload {
	p := domain.ProductPayload{
		ModelNo:       strings.TrimSpace(d.ModelNo),
		CategoryType:  d.CategoryType,
		CategoryRef:   strings.TrimSpace(d.CategoryRef),
		CategoryModel: domain.CategoryModelFor(d.CategoryType),
		Description:   strings.TrimSpace(d.Description),
		Image:         strings.TrimSpace(d.Image),
		Video:         strings.TrimSpace(d.Video),
		PDF:           strings.TrimSpace(d.PDF),
		TireKey:       strings.TrimSpace(d.TireKey),
		Feature:       domain.Media(d.Feature),
		Specification: domain.Media(d.Specification),
		Warranty:      domain.Media(d.Warranty),
		IsActive:      d.IsActive,
		Advantages: domain.Advantages{
			Image: d.Advantages.Image,
			Video: d.Advantages.Video,
			PDF:   d.Advantages.PDF,
			Types: make([]domain.AdvantageType, 0, len(d.Advantages.Types)),
		},
	}
	for _, t := range d.Advantages.Types {
		at := domain.AdvantageType{Title: t.Title, Points: make([]domain.AdvantagePoint, 0, len(t.Points))}
		for _, pt := range t.Points {
			at.Points = append(at.Points, domain.AdvantagePoint(pt))
		}
		p.Advantages.Types = append(p.Advantages.Types, at)
	}
	return p
}

func outOfRange(what string, i int) error {
	return apperr.New(apperr.CodeValidation, fmt.Sprintf("%s %d does not exist", what, i+1))
}

func (d *ProductDraft) typeAt(ti int) (*AdvantageTypeDraft, error) {
	if ti < 0 || ti >= len(d.Advantages.Types) {
		return nil, outOfRange("Advantage", ti)
	}
	return &d.Advantages.Types[ti], nil
}

// AddType appends an empty advantage.
func (d *ProductDraft) AddType() {
	d.Advantages.Types = append(d.Advantages.Types, AdvantageTypeDraft{Points: []PointDraft{}})
}

func (d *ProductDraft) RemoveType(ti int) error {
	if _, err := d.typeAt(ti); err != nil {
		return err
	}
	types := d.Advantages.Types
	out := make([]AdvantageTypeDraft, 0, len(types)-1)
	out = append(out, types[:ti]...)
	d.Advantages.Types = append(out, types[ti+1:]...)
	return nil
}

func (d *ProductDraft) SetTypeTitle(ti int, v string) error {
	t, err := d.typeAt(ti)
	if err != nil {
		return err
	}
	t.Title = v
	return nil
}

// AddPoint appends an empty point to advantage ti.
func (d *ProductDraft) AddPoint(ti int) error {
	t, err := d.typeAt(ti)
	if err != nil {
		return err
	}
	t.Points = append(t.Points, PointDraft{})
	return nil
}

func (d *ProductDraft) RemovePoint(ti, pi int) error {
	t, err := d.typeAt(ti)
	if err != nil {
		return err
	}
	if pi < 0 || pi >= len(t.Points) {
		return outOfRange("Point", pi)
	}
	out := make([]PointDraft, 0, len(t.Points)-1)
	out = append(out, t.Points[:pi]...)
	t.Points = append(out, t.Points[pi+1:]...)
	return nil
}

// SetPointField sets one of title, description, image, video or pdf.
func (d *ProductDraft) SetPointField(ti, pi int, field, v string) error {
	t, err := d.typeAt(ti)
	if err != nil {
		return err
	}
	if pi < 0 || pi >= len(t.Points) {
		return outOfRange("Point", pi)
	}
	pt := &t.Points[pi]
	switch field {
	case "title":
		pt.Title = v
	case "description":
		pt.Description = v
	case "image":
		pt.Image = v
	case "video":
		pt.Video = v
	case "pdf":
		pt.PDF = v
	default:
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown point field %q", field))
	}
	return nil
}
