package fieldpath

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protowire/protoreflect/dynamicpb"
	"github.com/protowire/protoreflect/filedesc"
	"github.com/protowire/protoreflect/internal/errors"
	"github.com/protowire/protoreflect/protoreflect"
)

type selfResolver struct{ f *filedesc.File }

func (r selfResolver) FindMessageByName(name protoreflect.FullName) protoreflect.MessageDescriptor {
	d := r.f.DescriptorByName(name)
	md, _ := d.(protoreflect.MessageDescriptor)
	return md
}
func (r selfResolver) FindEnumByName(name protoreflect.FullName) protoreflect.EnumDescriptor {
	d := r.f.DescriptorByName(name)
	ed, _ := d.(protoreflect.EnumDescriptor)
	return ed
}

func buildGizmoFile(t *testing.T) *filedesc.File {
	t.Helper()
	f, err := filedesc.Build(&filedesc.FileBuilder{
		Name:    "gizmo.proto",
		Package: "acme.gizmo",
		Syntax:  "proto3",
		Messages: []*filedesc.MessageBuilder{
			{
				Name: "Gizmo",
				Fields: []*filedesc.FieldBuilder{
					{Name: "id", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
					{Name: "name", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
					{Name: "tags", Number: 3, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.StringKind)},
					{Name: "child", Number: 4, Label: int32(protoreflect.Optional), Type: int32(protoreflect.MessageKind), TypeName: "acme.gizmo.Part"},
					{Name: "parts", Number: 5, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.MessageKind), TypeName: "acme.gizmo.Part"},
					{Name: "scores", Number: 6, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.MessageKind), TypeName: "acme.gizmo.Gizmo.ScoresEntry"},
					{Name: "bins", Number: 7, Label: int32(protoreflect.Repeated), Type: int32(protoreflect.MessageKind), TypeName: "acme.gizmo.Gizmo.BinsEntry"},
				},
				Messages: []*filedesc.MessageBuilder{
					{
						Name:       "ScoresEntry",
						IsMapEntry: true,
						Fields: []*filedesc.FieldBuilder{
							{Name: "key", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
							{Name: "value", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
						},
					},
					{
						Name:       "BinsEntry",
						IsMapEntry: true,
						Fields: []*filedesc.FieldBuilder{
							{Name: "key", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
							{Name: "value", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.MessageKind), TypeName: "acme.gizmo.Part"},
						},
					},
				},
			},
			{
				Name: "Part",
				Fields: []*filedesc.FieldBuilder{
					{Name: "note", Number: 1, Label: int32(protoreflect.Optional), Type: int32(protoreflect.StringKind)},
					{Name: "value", Number: 2, Label: int32(protoreflect.Optional), Type: int32(protoreflect.Int32Kind)},
				},
			},
		},
	})
	require.NoError(t, err)
	f.SetResolver(selfResolver{f})
	return f
}

func gizmoDescriptor(t *testing.T) protoreflect.MessageDescriptor {
	t.Helper()
	f := buildGizmoFile(t)
	return f.Messages().ByName("Gizmo")
}

func TestGetSetScalar(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	ok, err := Has(m, "name")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, Set(m, "name", protoreflect.StringValue("widget")))
	require.NoError(t, Set(m, "id", protoreflect.Int32Value(42)))

	v, ok, err := Get(m, "name")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "widget", v.String())

	ok, err = Has(m, "id")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGetUnknownFieldErrors(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	_, _, err := Get(m, "bogus")
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errors.Sentinel(errors.KindFieldNotFound)))
}

func TestSetNestedMessageAutoVivifies(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	require.NoError(t, Set(m, "child.note", protoreflect.StringValue("hinge")))
	require.NoError(t, Set(m, "child.value", protoreflect.Int32Value(3)))

	v, ok, err := Get(m, "child.note")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hinge", v.String())

	childField := gizmo.Fields().ByName("child")
	require.True(t, m.Has(childField))
}

func TestRepeatedAppendAndIndex(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	require.NoError(t, Set(m, "tags[0]", protoreflect.StringValue("a")))
	require.NoError(t, Set(m, "tags[1]", protoreflect.StringValue("b")))
	require.NoError(t, Set(m, "tags[1]", protoreflect.StringValue("b2")))

	v, ok, err := Get(m, "tags[0]")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", v.String())

	v, ok, err = Get(m, "tags[1]")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b2", v.String())

	_, ok, err = Get(m, "tags[5]")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRepeatedIndexOutOfBounds(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	err := Set(m, "tags[3]", protoreflect.StringValue("x"))
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errors.Sentinel(errors.KindIndexOutOfBounds)))
}

func TestRepeatedMessageIndexTraversal(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	require.NoError(t, Set(m, "parts[0].note", protoreflect.StringValue("first")))
	require.NoError(t, Set(m, "parts[1].note", protoreflect.StringValue("second")))

	v, ok, err := Get(m, "parts[1].note")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", v.String())

	partsField := gizmo.Fields().ByName("parts")
	require.Equal(t, 2, m.Get(partsField).List().Len())
}

func TestMapSetGetHasClear(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	require.NoError(t, Set(m, "scores['alice']", protoreflect.Int32Value(10)))
	require.NoError(t, Set(m, `scores["bob"]`, protoreflect.Int32Value(7)))

	v, ok, err := Get(m, "scores['alice']")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(10), v.Int())

	ok, err = Has(m, "scores['carol']")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, Clear(m, "scores['alice']"))
	ok, err = Has(m, "scores['alice']")
	require.NoError(t, err)
	require.False(t, ok)

	// Clearing an absent key is a no-op, not an error.
	require.NoError(t, Clear(m, "scores['alice']"))
}

func TestMapValueMessageAutoVivifies(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	require.NoError(t, Set(m, "bins['a'].note", protoreflect.StringValue("bin-a")))

	v, ok, err := Get(m, "bins['a'].note")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "bin-a", v.String())
}

func TestClearRepeatedIndexShifts(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	require.NoError(t, Set(m, "tags[0]", protoreflect.StringValue("a")))
	require.NoError(t, Set(m, "tags[1]", protoreflect.StringValue("b")))
	require.NoError(t, Set(m, "tags[2]", protoreflect.StringValue("c")))

	require.NoError(t, Clear(m, "tags[0]"))

	v, ok, err := Get(m, "tags[0]")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", v.String())

	v, ok, err = Get(m, "tags[1]")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "c", v.String())

	_, ok, err = Get(m, "tags[2]")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClearRepeatedIndexOutOfBounds(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	err := Clear(m, "tags[0]")
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errors.Sentinel(errors.KindIndexOutOfBounds)))
}

func TestLeadingDollarAccepted(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	require.NoError(t, Set(m, "$.name", protoreflect.StringValue("x")))
	v, ok, err := Get(m, "$name")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "x", v.String())
}

func TestSubscriptOnNonRepeatedFieldErrors(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	_, _, err := Get(m, "name[0]")
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errors.Sentinel(errors.KindNotRepeated)))
}

func TestBuilderChaining(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	built, err := NewBuilder(m).
		Set("id", 9).
		Set("name", "assembled").
		Set("tags", []interface{}{"x", "y"}).
		Set("child", map[string]interface{}{"note": "hinge", "value": 2}).
		Set("scores", map[string]interface{}{"alice": 10, "bob": 7}).
		Build()
	require.NoError(t, err)

	out := built.(*dynamicpb.Message)
	require.Equal(t, int64(9), out.Get(gizmo.Fields().ByName("id")).Int())
	require.Equal(t, "assembled", out.Get(gizmo.Fields().ByName("name")).String())
	require.Equal(t, 2, out.Get(gizmo.Fields().ByName("tags")).List().Len())

	child := out.Get(gizmo.Fields().ByName("child")).Message()
	partDesc := child.Descriptor()
	require.Equal(t, "hinge", child.Get(partDesc.Fields().ByName("note")).String())
	require.Equal(t, int64(2), child.Get(partDesc.Fields().ByName("value")).Int())

	scoresVal, ok := out.Get(gizmo.Fields().ByName("scores")).Map().Get(protoreflect.StringValue("alice"))
	require.True(t, ok)
	require.Equal(t, int64(10), scoresVal.Int())
}

func TestBuilderStopsAtFirstError(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	_, err := NewBuilder(m).
		Set("bogus", 1).
		Set("name", "never applied").
		Build()
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errors.Sentinel(errors.KindFieldNotFound)))

	ok, hasErr := Has(m, "name")
	require.NoError(t, hasErr)
	require.False(t, ok)
}

func TestBuilderRepeatedMessageSequence(t *testing.T) {
	gizmo := gizmoDescriptor(t)
	m := dynamicpb.NewMessage(gizmo)

	built, err := NewBuilder(m).
		Set("parts", []interface{}{
			map[string]interface{}{"note": "first"},
			map[string]interface{}{"note": "second"},
		}).
		Build()
	require.NoError(t, err)

	out := built.(*dynamicpb.Message)
	partsField := gizmo.Fields().ByName("parts")
	list := out.Get(partsField).List()
	require.Equal(t, 2, list.Len())
	partDesc := list.Get(0).Message().Descriptor()
	require.Equal(t, "first", list.Get(0).Message().Get(partDesc.Fields().ByName("note")).String())
	require.Equal(t, "second", list.Get(1).Message().Get(partDesc.Fields().ByName("note")).String())
}
