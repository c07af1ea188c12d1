package types

import (
	"math"
	"testing"
)

func TestConvertSameTypePassthrough(t *testing.T) {
	e := NewEngine()
	v := NewInt32(42)
	out, err := e.Convert("go", v, "rust", "i32")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AsInt64() != 42 {
		t.Fatalf("expected 42, got %d", out.AsInt64())
	}
}

func TestConvertWideningIsValuePreserving(t *testing.T) {
	e := NewEngine()
	v := NewInt32(5)
	out, err := e.Convert("go", v, "rust", "i64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != KindInt64 {
		t.Fatalf("expected KindInt64, got %v", out.Kind)
	}
	if out.AsInt64() != 5 {
		t.Fatalf("expected 5, got %d", out.AsInt64())
	}
}

func TestConvertNarrowingLossRejectedByDefault(t *testing.T) {
	e := NewEngine()
	v := NewInt64(300)
	_, err := e.Convert("go", v, "rust", "i8")
	if err == nil {
		t.Fatal("expected NarrowingLossError, got nil")
	}
	if _, ok := err.(*NarrowingLossError); !ok {
		t.Fatalf("expected *NarrowingLossError, got %T (%v)", err, err)
	}
}

func TestConvertNarrowingWithinRangeSucceeds(t *testing.T) {
	e := NewEngine()
	v := NewInt64(100)
	out, err := e.Convert("go", v, "rust", "i8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AsInt64() != 100 {
		t.Fatalf("expected 100, got %d", out.AsInt64())
	}
}

func TestConvertNonFiniteFloatToIntRejected(t *testing.T) {
	e := NewEngine()
	v := NewFloat64(math.Inf(1))
	_, err := e.Convert("go", v, "rust", "i32")
	if err == nil {
		t.Fatal("expected NonFiniteError, got nil")
	}
	if _, ok := err.(*NonFiniteError); !ok {
		t.Fatalf("expected *NonFiniteError, got %T (%v)", err, err)
	}
}

func TestConvertFloatToIntTruncatesTowardZero(t *testing.T) {
	e := NewEngine()
	v := NewFloat64(3.9)
	out, err := e.Convert("go", v, "rust", "i32")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AsInt64() != 3 {
		t.Fatalf("expected 3, got %d", out.AsInt64())
	}
}

func TestConvertMalformedUTF8Rejected(t *testing.T) {
	e := NewEngine()
	v := CanonicalValue{TypeID: "string", Kind: KindString, Ownership: Owned, Str: []byte{0xff, 0xfe, 0x00}}
	_, err := e.Convert("go", v, "rust", "string")
	if err == nil {
		t.Fatal("expected MalformedUTF8Error, got nil")
	}
	if _, ok := err.(*MalformedUTF8Error); !ok {
		t.Fatalf("expected *MalformedUTF8Error, got %T (%v)", err, err)
	}
}

func TestConvertValidUTF8Passthrough(t *testing.T) {
	e := NewEngine()
	v := NewOwnedString("hello")
	out, err := e.Convert("go", v, "rust", "string")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AsString() != "hello" {
		t.Fatalf("expected hello, got %q", out.AsString())
	}
}

func TestRegisterConversionDirectRule(t *testing.T) {
	e := NewEngine()
	called := false
	key := ConversionKey{SourceLanguage: "go", SourceTypeID: "i32", TargetLanguage: "python", TargetTypeID: "i64"}
	err := e.RegisterConversion(Rule{
		Key: key,
		Convert: func(v CanonicalValue) (CanonicalValue, error) {
			called = true
			return NewInt64(v.AsInt64() * 2), nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := e.Convert("go", NewInt32(10), "python", "i64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected direct rule to be used")
	}
	if out.AsInt64() != 20 {
		t.Fatalf("expected 20, got %d", out.AsInt64())
	}
}

func TestRegisterConversionDuplicateRejected(t *testing.T) {
	e := NewEngine()
	key := ConversionKey{SourceLanguage: "go", SourceTypeID: "i32", TargetLanguage: "python", TargetTypeID: "i64"}
	rule := Rule{Key: key, Convert: func(v CanonicalValue) (CanonicalValue, error) { return v, nil }}
	if err := e.RegisterConversion(rule); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := e.RegisterConversion(rule)
	if _, ok := err.(*AlreadyRegisteredError); !ok {
		t.Fatalf("expected *AlreadyRegisteredError, got %T (%v)", err, err)
	}
}

func TestConvertUnknownTargetType(t *testing.T) {
	e := NewEngine()
	_, err := e.Convert("go", NewInt32(1), "rust", "does-not-exist")
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected *NotFoundError, got %T (%v)", err, err)
	}
}

func TestConvertStructFieldMapping(t *testing.T) {
	e := NewEngine()
	if err := e.Types.Register(&Descriptor{
		ID:   "PointA",
		Kind: KindStruct,
		Fields: []FieldDescriptor{
			{Name: "x", TypeID: "f32"},
			{Name: "y", TypeID: "f32"},
		},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Types.Register(&Descriptor{
		ID:   "PointB",
		Kind: KindStruct,
		Fields: []FieldDescriptor{
			{Name: "x", TypeID: "f64"},
			{Name: "y", TypeID: "f64"},
		},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src := NewStructValue("PointA", map[string]CanonicalValue{
		"x": NewFloat32(1.5),
		"y": NewFloat32(2.5),
	})

	out, err := e.Convert("langA", src, "langB", "PointB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != KindStruct || out.TypeID != "PointB" {
		t.Fatalf("unexpected result %+v", out)
	}
	fields, ok := StructFields(out)
	if !ok {
		t.Fatal("expected field data for converted struct")
	}
	if fields["x"].AsFloat64() != 1.5 || fields["y"].AsFloat64() != 2.5 {
		t.Fatalf("unexpected field values: %+v", fields)
	}
}

func TestConvertStructMissingOptionalFieldZeroed(t *testing.T) {
	e := NewEngine()
	if err := e.Types.Register(&Descriptor{
		ID:     "SrcShape",
		Kind:   KindStruct,
		Fields: []FieldDescriptor{{Name: "x", TypeID: "i32"}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Types.Register(&Descriptor{
		ID:   "TgtShape",
		Kind: KindStruct,
		Fields: []FieldDescriptor{
			{Name: "x", TypeID: "i32"},
			{Name: "label", TypeID: "string", Optional: true},
		},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src := NewStructValue("SrcShape", map[string]CanonicalValue{"x": NewInt32(7)})
	out, err := e.Convert("langA", src, "langB", "TgtShape")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields, _ := StructFields(out)
	if fields["x"].AsInt64() != 7 {
		t.Fatalf("expected x=7, got %+v", fields["x"])
	}
	if fields["label"].Kind != KindString || fields["label"].AsString() != "" {
		t.Fatalf("expected zeroed label field, got %+v", fields["label"])
	}
}

func TestConvertStructMissingRequiredFieldFails(t *testing.T) {
	e := NewEngine()
	if err := e.Types.Register(&Descriptor{
		ID:     "SrcShape2",
		Kind:   KindStruct,
		Fields: []FieldDescriptor{{Name: "x", TypeID: "i32"}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Types.Register(&Descriptor{
		ID:   "TgtShape2",
		Kind: KindStruct,
		Fields: []FieldDescriptor{
			{Name: "x", TypeID: "i32"},
			{Name: "y", TypeID: "i32"},
		},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src := NewStructValue("SrcShape2", map[string]CanonicalValue{"x": NewInt32(7)})
	_, err := e.Convert("langA", src, "langB", "TgtShape2")
	if _, ok := err.(*RequiredFieldMissingError); !ok {
		t.Fatalf("expected *RequiredFieldMissingError, got %T (%v)", err, err)
	}
}

func TestCompatibleIdenticalTypeID(t *testing.T) {
	e := NewEngine()
	if !e.Compatible("i32", "i32") {
		t.Fatal("expected a type id to be compatible with itself")
	}
}

func TestCompatibleNumericPrimitives(t *testing.T) {
	e := NewEngine()
	cases := [][2]string{{"i32", "i64"}, {"u8", "f64"}, {"f32", "i16"}, {"f32", "f64"}}
	for _, c := range cases {
		if !e.Compatible(c[0], c[1]) {
			t.Errorf("expected %s compatible with %s", c[0], c[1])
		}
	}
}

func TestCompatibleRejectsStringToNumeric(t *testing.T) {
	e := NewEngine()
	if e.Compatible("string", "i32") {
		t.Fatal("expected string not compatible with i32: convertPrimitive has no rule for this pair")
	}
}

func TestCompatibleRejectsBoolToNumeric(t *testing.T) {
	e := NewEngine()
	if e.Compatible("bool", "i32") {
		t.Fatal("expected bool not compatible with i32")
	}
}

func TestCompatibleBothStructKinds(t *testing.T) {
	e := NewEngine()
	if err := e.Types.Register(&Descriptor{ID: "ShapeA", Kind: KindStruct}); err != nil {
		t.Fatalf("register ShapeA: %v", err)
	}
	if err := e.Types.Register(&Descriptor{ID: "ShapeB", Kind: KindStruct}); err != nil {
		t.Fatalf("register ShapeB: %v", err)
	}
	if !e.Compatible("ShapeA", "ShapeB") {
		t.Fatal("expected two struct-kind types to be compatible")
	}
}

func TestCompatibleUnknownTypeIDReturnsFalse(t *testing.T) {
	e := NewEngine()
	if e.Compatible("i32", "does-not-exist") {
		t.Fatal("expected an unknown target type id to be incompatible")
	}
}

func TestCompatibleViaRegisteredRule(t *testing.T) {
	e := NewEngine()
	if err := e.Types.Register(&Descriptor{ID: "Point", Kind: KindStruct}); err != nil {
		t.Fatalf("register Point: %v", err)
	}
	if err := e.RegisterConversion(Rule{
		Key:     ConversionKey{SourceLanguage: "go", SourceTypeID: "string", TargetLanguage: "rust", TargetTypeID: "Point"},
		Convert: func(v CanonicalValue) (CanonicalValue, error) { return v, nil },
	}); err != nil {
		t.Fatalf("RegisterConversion: %v", err)
	}
	if !e.Compatible("string", "Point") {
		t.Fatal("expected a directly registered rule to make the pair compatible")
	}
}
