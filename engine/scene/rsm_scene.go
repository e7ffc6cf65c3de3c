package scene

import (
	"github.com/Carmen-Shannon/oxy-rsm/common"
	"github.com/Carmen-Shannon/oxy-rsm/engine/model"
	"github.com/Carmen-Shannon/oxy-rsm/engine/renderer/material"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Layout of the default scene: a subject standing in the corner formed by a floor and two walls.
const (
	DefaultMeshScale = float32(20)
	cornerSize       = float32(5)
)

// NewRSMScene builds the default scene around subject: the subject at the origin scaled by
// meshScale with the default material, a green floor, a blue back wall at +Z and a red left
// wall at -X. The three quads share one unit rect mesh scaled to cornerSize. Model constant
// slots are 0 for the subject and 1..3 for floor, back wall and left wall.
//
// Parameters:
//   - subject: the mesh placed in the corner
//   - meshScale: the uniform scale applied to subject
//
// Returns:
//   - Scene: the scene with four render items
func NewRSMScene(subject model.Model, meshScale float32) Scene {
	s := NewScene("rsm")

	subjectMesh := s.AddMesh(subject)
	rect := s.AddMesh(model.NewModel(model.WithName("rect"), model.WithMesh(model.RectXZ(1, 1))))

	corner := mgl32.Vec3{cornerSize, cornerSize, cornerSize}
	identity := mgl32.QuatIdent()

	s.AddItem(subject.Name(), subjectMesh,
		common.Transformation(mgl32.Vec3{meshScale, meshScale, meshScale}, identity, mgl32.Vec3{}),
		material.NewDiffuse(material.WithName(subject.Name())))

	s.AddItem("floor", rect,
		common.Transformation(corner, identity, mgl32.Vec3{}),
		material.NewDiffuse(material.WithName("floor"), material.WithAlbedo(mgl32.Vec3{0, 0.8, 0})))

	s.AddItem("back_wall", rect,
		common.Transformation(corner, mgl32.QuatRotate(-math32.Pi/2, mgl32.Vec3{1, 0, 0}), mgl32.Vec3{0, cornerSize / 2, cornerSize / 2}),
		material.NewDiffuse(material.WithName("back_wall"), material.WithAlbedo(mgl32.Vec3{0, 0, 0.8})))

	s.AddItem("left_wall", rect,
		common.Transformation(corner, mgl32.QuatRotate(-math32.Pi/2, mgl32.Vec3{0, 0, 1}), mgl32.Vec3{-cornerSize / 2, cornerSize / 2, 0}),
		material.NewDiffuse(material.WithName("left_wall"), material.WithAlbedo(mgl32.Vec3{0.8, 0, 0})))

	return s
}
