package mapper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"deepsight-be/internal/entity"
)

func TestFacilityMapperKeepsAttributesAndEmbedding(t *testing.T) {
	m := NewFacilityMapper()
	in := &entity.Facility{
		Id:         uuid.New(),
		Name:       "Shore Temple",
		Location:   "Mahabalipuram",
		FreeText:   "Shore Temple in Mahabalipuram, Open 6 AM - 6 PM",
		Attributes: map[string]string{"timings": "6 AM - 6 PM"},
		Embedding:  []float32{0.6, 0.8},
	}

	mod := m.ToModel(in, 7)
	assert.Equal(t, 7, mod.Position)
	assert.NotNil(t, mod.Embedding)
	assert.JSONEq(t, `{"timings":"6 AM - 6 PM"}`, string(mod.Attributes))

	out := m.ToEntity(mod)
	assert.Equal(t, in.Attributes, out.Attributes)
	assert.Equal(t, in.Embedding, out.Embedding)
}

func TestFacilityMapperWithoutEmbedding(t *testing.T) {
	mod := NewFacilityMapper().ToModel(&entity.Facility{Name: "x"}, 0)
	assert.Nil(t, mod.Embedding)
	assert.Nil(t, mod.Attributes)
	assert.Nil(t, NewFacilityMapper().ToEntity(mod).Embedding)
}

func TestSearchLogMapper(t *testing.T) {
	now := time.Now()
	in := &entity.SearchLog{Id: uuid.New(), DeviceId: "d", History: "Hampi", CreatedAt: now, UpdatedAt: now}
	m := NewSearchLogMapper()
	assert.Equal(t, in, m.ToEntity(m.ToModel(in)))
	assert.Nil(t, m.ToEntity(nil))
}
