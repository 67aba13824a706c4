package mapper

import (
	"encoding/json"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	"deepsight-be/internal/entity"
	"deepsight-be/internal/model"
)

type FacilityMapper struct{}

func NewFacilityMapper() *FacilityMapper {
	return &FacilityMapper{}
}

func (m *FacilityMapper) ToEntity(f *model.Facility) *entity.Facility {
	if f == nil {
		return nil
	}

	var attrs map[string]string
	if len(f.Attributes) > 0 {
		_ = json.Unmarshal(f.Attributes, &attrs)
	}

	var vec []float32
	if f.Embedding != nil {
		vec = f.Embedding.Slice()
	}

	return &entity.Facility{
		Id:         f.Id,
		Name:       f.Name,
		Location:   f.Location,
		FreeText:   f.FreeText,
		Attributes: attrs,
		Embedding:  vec,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// ToModel maps a facility for storage. position keeps corpus order, which the
// place name scan depends on.
func (m *FacilityMapper) ToModel(f *entity.Facility, position int) *model.Facility {
	if f == nil {
		return nil
	}

	var attrs datatypes.JSON
	if len(f.Attributes) > 0 {
		if raw, err := json.Marshal(f.Attributes); err == nil {
			attrs = datatypes.JSON(raw)
		}
	}

	var vec *pgvector.Vector
	if len(f.Embedding) > 0 {
		v := pgvector.NewVector(f.Embedding)
		vec = &v
	}

	return &model.Facility{
		Id:         f.Id,
		Name:       f.Name,
		Location:   f.Location,
		FreeText:   f.FreeText,
		Attributes: attrs,
		Embedding:  vec,
		Position:   position,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}
