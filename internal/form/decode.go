package form

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"catalogconsole/internal/apperr"
)

// Values is a flattened urlencoded post body, last value wins.
type Values map[string]string

func (v Values) get(key string) string { return strings.TrimSpace(v[key]) }

// raw keeps inner whitespace for free-text fields.
func (v Values) raw(key string) string { return v[key] }

const maxNested = 50

var (
	reTypeTitle  = regexp.MustCompile(`^adv\.(\d{1,3})\.title$`)
	rePointField = regexp.MustCompile(`^adv\.(\d{1,3})\.points\.(\d{1,3})\.(title|description|image|video|pdf)$`)
)

func DecodeCategory(id string, v Values) *CategoryDraft {
	return &CategoryDraft{ID: id, Title: v.get("title"), Image: v.get("image")}
}

func DecodeSubCategory(id string, v Values) *SubCategoryDraft {
	return &SubCategoryDraft{ID: id, Title: v.get("title"), Image: v.get("image"), CategoryID: v.get("categoryId")}
}

func checkbox(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func decodeMedia(prefix string, v Values) MediaDraft {
	return MediaDraft{
		Title:       v.get(prefix + ".title"),
		Description: v.raw(prefix + ".description"),
		Image:       v.get(prefix + ".image"),
		Video:       v.get(prefix + ".video"),
		PDF:         v.get(prefix + ".pdf"),
	}
}

// DecodeProduct rebuilds a product draft from adv.N.title and
// adv.N.points.M.<field> keys. Indices are positional: gaps close up in order.
// The draft is always returned, also alongside a validation error.
func DecodeProduct(id string, v Values) (*ProductDraft, error) {
	d := &ProductDraft{
		ID:            id,
		ModelNo:       v.get("modelNo"),
		CategoryType:  v.get("categoryType"),
		CategoryRef:   v.get("categoryRef"),
		Description:   v.raw("description"),
		Image:         v.get("image"),
		Video:         v.get("video"),
		PDF:           v.get("pdf"),
		TireKey:       v.get("tireKey"),
		IsActive:      checkbox(v["isActive"]),
		Feature:       decodeMedia("feature", v),
		Specification: decodeMedia("specification", v),
		Warranty:      decodeMedia("warranty", v),
		Advantages: AdvantagesDraft{
			Image: v.get("adv.image"),
			Video: v.get("adv.video"),
			PDF:   v.get("adv.pdf"),
			Types: []AdvantageTypeDraft{},
		},
	}

	titles := map[int]string{}
	points := map[int]map[int]map[string]string{}
	for key, val := range v {
		if m := reTypeTitle.FindStringSubmatch(key); m != nil {
			ti, _ := strconv.Atoi(m[1])
			titles[ti] = strings.TrimSpace(val)
			continue
		}
		if m := rePointField.FindStringSubmatch(key); m != nil {
			ti, _ := strconv.Atoi(m[1])
			pi, _ := strconv.Atoi(m[2])
			if points[ti] == nil {
				points[ti] = map[int]map[string]string{}
			}
			if points[ti][pi] == nil {
				points[ti][pi] = map[string]string{}
			}
			points[ti][pi][m[3]] = val
		}
	}

	typeIdx := map[int]bool{}
	for ti := range titles {
		typeIdx[ti] = true
	}
	for ti := range points {
		typeIdx[ti] = true
	}
	// over the cap the draft keeps the first entries, so nothing typed before
	// them is lost when the form is shown again
	var tooMany error
	types := sortedKeys(typeIdx)
	if len(types) > maxNested {
		types = types[:maxNested]
		tooMany = apperr.New(apperr.CodeValidation, fmt.Sprintf("At most %d advantages are allowed", maxNested))
	}
	for _, ti := range types {
		d.AddType()
		pos := len(d.Advantages.Types) - 1
		_ = d.SetTypeTitle(pos, titles[ti])

		byPoint := points[ti]
		pointIdx := map[int]bool{}
		for pi := range byPoint {
			pointIdx[pi] = true
		}
		order := sortedKeys(pointIdx)
		if len(order) > maxNested {
			order = order[:maxNested]
			if tooMany == nil {
				tooMany = apperr.New(apperr.CodeValidation, fmt.Sprintf("At most %d points per advantage are allowed", maxNested))
			}
		}
		for _, pi := range order {
			_ = d.AddPoint(pos)
			ppos := len(d.Advantages.Types[pos].Points) - 1
			for field, val := range byPoint[pi] {
				if field != "description" {
					val = strings.TrimSpace(val)
				}
				_ = d.SetPointField(pos, ppos, field, val)
			}
		}
	}
	return d, tooMany
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Op names a structural edit posted by the product form's buttons.
type Op struct {
	Kind  string
	Type  int
	Point int
}

const (
	OpSave        = "save"
	OpAddType     = "add-type"
	OpRemoveType  = "remove-type"
	OpAddPoint    = "add-point"
	OpRemovePoint = "remove-point"
)

// ParseOp reads "add-type", "remove-type:1", "add-point:0", "remove-point:0:2".
// Anything empty is a save.
func ParseOp(s string) (Op, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == OpSave {
		return Op{Kind: OpSave}, nil
	}
	parts := strings.Split(s, ":")
	nums := make([]int, 0, 2)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Op{}, apperr.New(apperr.CodeValidation, "Unknown form action")
		}
		nums = append(nums, n)
	}
	want := map[string]int{OpAddType: 0, OpRemoveType: 1, OpAddPoint: 1, OpRemovePoint: 2}
	n, ok := want[parts[0]]
	if !ok || n != len(nums) {
		return Op{}, apperr.New(apperr.CodeValidation, "Unknown form action")
	}
	op := Op{Kind: parts[0]}
	if n > 0 {
		op.Type = nums[0]
	}
	if n > 1 {
		op.Point = nums[1]
	}
	return op, nil
}

// Apply runs a structural edit on d. Save is a no-op here.
func (op Op) Apply(d *ProductDraft) error {
	switch op.Kind {
	case OpAddType:
		if len(d.Advantages.Types) >= maxNested {
			return apperr.New(apperr.CodeValidation, fmt.Sprintf("At most %d advantages are allowed", maxNested))
		}
		d.AddType()
		return nil
	case OpRemoveType:
		return d.RemoveType(op.Type)
	case OpAddPoint:
		if t, err := d.typeAt(op.Type); err == nil && len(t.Points) >= maxNested {
			return apperr.New(apperr.CodeValidation, fmt.Sprintf("At most %d points per advantage are allowed", maxNested))
		}
		return d.AddPoint(op.Type)
	case OpRemovePoint:
		return d.RemovePoint(op.Type, op.Point)
	}
	return nil
}
