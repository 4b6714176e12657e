package blocks_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ventanita/internal/blocks"
)

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := blocks.NewRegistry()
	require.NoError(t, r.Register(&blocks.Definition{Key: "quote", Kind: blocks.KindText}))

	err := r.Register(&blocks.Definition{Key: "quote", Kind: blocks.KindChar})
	assert.ErrorIs(t, err, blocks.ErrDuplicateBlock)
	assert.Panics(t, func() { r.MustRegister(&blocks.Definition{Key: "quote"}) })
}

func TestRegistry_RegisterStreamRequiresStreamKind(t *testing.T) {
	r := blocks.NewRegistry()
	assert.Error(t, r.RegisterStream("body", &blocks.Definition{Kind: blocks.KindStruct}))
}

func TestRegistry_SeparateInstances(t *testing.T) {
	a := blocks.NewRegistry()
	b := blocks.NewRegistry()
	require.NoError(t, a.Register(&blocks.Definition{Key: "x", Kind: blocks.KindChar}))

	_, ok := b.Lookup("x")
	assert.False(t, ok, "registries must not share state")
}

func TestStandardRegistry_Contents(t *testing.T) {
	r := blocks.NewStandardRegistry()

	for _, key := range []string{
		"heading_block", "paragraph_block", "image_block", "block_quote", "document",
		"embed_block", "faq", "further_reading", "gallery", "internal_link",
		"external_link", "document_link", "link", "image_link", "promotions",
		"link_list", "nav_tab", "nav_tab_links", "contact", "ratings",
	} {
		_, ok := r.Lookup(key)
		assert.True(t, ok, key)
	}
	assert.Equal(t, []string{
		"body", "companies", "contact", "destinations", "faq", "featured_pages",
		"info", "links", "nav_tab_links", "promotions", "ratings",
	}, r.Streams())

	body, ok := r.Stream("body")
	require.True(t, ok)
	assert.Len(t, body.Children, 11)
}

func TestStandardRegistry_Describe(t *testing.T) {
	r := blocks.NewStandardRegistry()
	faq, _ := r.Lookup("faq")
	s := faq.Describe()

	assert.Equal(t, blocks.KindStruct, s.Kind)
	assert.Equal(t, []string{"title", "item"}, s.FieldOrder)
	assert.Equal(t, blocks.DefaultFAQTitle, s.Fields["title"].Default)
	require.NotNil(t, s.Fields["item"].Child)

	_, err := json.Marshal(s)
	assert.NoError(t, err)
}

func TestValidateStream_UnknownStream(t *testing.T) {
	_, err := blocks.NewStandardRegistry().ValidateStream("sidebar", nil)
	assert.ErrorIs(t, err, blocks.ErrUnknownStream)
}

func validationErrors(t *testing.T, err error) []blocks.FieldError {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, blocks.ErrValidation))
	var ve *blocks.ValidationError
	require.True(t, errors.As(err, &ve))
	return ve.Errors
}

func TestValidateStream_Body(t *testing.T) {
	raw := json.RawMessage(`[
		{"type": "heading_block", "value": {"heading_text": "Horarios", "size": "h2"}, "id": "a"},
		{"type": "paragraph_block", "value": "<p>Salidas diarias</p>"},
		{"type": "faq", "value": {"item": [
			{"question": "¿Hay wifi?", "answer": "<p>Sí</p>"},
			{"type": "item", "value": {"question": "¿Baño?", "answer": "<p>Sí</p>"}, "id": "i2"}
		]}},
		{"type": "link", "value": [{"type": "external_link", "value": {"title": "NSA", "link": "https://nsa.com.py"}}]}
	]`)

	s, err := blocks.NewStandardRegistry().ValidateStream("body", raw)
	require.NoError(t, err)
	require.Len(t, s, 4)

	assert.Equal(t, "a", s[0].ID)
	assert.NotEmpty(t, s[1].ID, "missing IDs are assigned")
	assert.Equal(t, "<p>Salidas diarias</p>", s[1].Value)

	faq := blocks.FAQFromStruct(s[2].Value.(*blocks.StructValue))
	assert.Equal(t, blocks.DefaultFAQTitle, faq.Title, "default applies when the field is absent")
	assert.Len(t, faq.Items, 2)

	inner, ok := s[3].Value.(blocks.StreamValue)
	require.True(t, ok)
	assert.Equal(t, "external_link", inner[0].Type)
}

func TestValidateStream_Failures(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		raw    string
		path   string
		msg    string
	}{
		{"unknown type", "body", `[{"type": "carousel", "value": {}}]`, "body[0]", "Unknown block type"},
		{"missing required", "body", `[{"type": "heading_block", "value": {"heading_text": ""}}]`, "body[0].heading_text", "required"},
		{"bad choice", "body", `[{"type": "heading_block", "value": {"heading_text": "x", "size": "h1"}}]`, "body[0].size", "valid choice"},
		{"bad url", "body", `[{"type": "embed_block", "value": "youtube"}]`, "body[0]", "valid URL"},
		{"faq answer missing", "faq", `[{"type": "faq", "value": {"title": "FAQ", "item": [{"question": "q"}]}}]`, "faq[0].item[0].answer", "required"},
		{"max one promotion", "promotions", `[
			{"type": "promotions", "value": {"heading_text": "a", "item": []}},
			{"type": "promotions", "value": {"heading_text": "b", "item": []}}
		]`, "promotions", "maximum number of items is 1"},
		{"empty link stream", "body", `[{"type": "link", "value": []}]`, "body[0]", "minimum number of items is 1"},
		{"too much further reading", "body", `[{"type": "further_reading", "value": [
			{"type": "external_link", "value": {"title": "1", "link": "https://a.py"}},
			{"type": "external_link", "value": {"title": "2", "link": "https://a.py"}},
			{"type": "external_link", "value": {"title": "3", "link": "https://a.py"}},
			{"type": "external_link", "value": {"title": "4", "link": "https://a.py"}},
			{"type": "external_link", "value": {"title": "5", "link": "https://a.py"}},
			{"type": "external_link", "value": {"title": "6", "link": "https://a.py"}}
		]}]`, "body[0]", "maximum number of items is 5"},
		{"negative rating", "ratings", `[{"type": "Ratings", "value": {"five": -1}}]`, "ratings[0].five", "greater than or equal to 0"},
		{"rating not a number", "ratings", `[{"type": "Ratings", "value": {"five": "many"}}]`, "ratings[0].five", "whole number"},
		{"bad phone", "contact", `[{"type": "contact", "value": {"phone": "abc", "whatsapp": "+595981123456",
			"email": "info@nsa.com.py", "address": "Asunción", "website": "https://nsa.com.py"}}]`, "contact[0].phone", "Phone number"},
		{"bad email", "contact", `[{"type": "contact", "value": {"phone": "+595 981 123 456", "whatsapp": "+595981123456",
			"email": "nope", "address": "Asunción", "website": "https://nsa.com.py"}}]`, "contact[0].email", "valid email"},
		{"not a list", "body", `{"type": "faq"}`, "body", "list of blocks"},
	}
	r := blocks.NewStandardRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ValidateStream(tt.stream, json.RawMessage(tt.raw))
			errs := validationErrors(t, err)
			if tt.msg == "" {
				return
			}
			found := false
			for _, fe := range errs {
				if fe.Path == tt.path && strings.Contains(fe.Message, tt.msg) {
					found = true
				}
			}
			assert.True(t, found, "want %s: %s in %v", tt.path, tt.msg, errs)
		})
	}
}

func TestValidateStream_CollectsAllErrors(t *testing.T) {
	raw := json.RawMessage(`[
		{"type": "heading_block", "value": {}},
		{"type": "image_block", "value": {}},
		{"type": "nope", "value": null}
	]`)
	_, err := blocks.NewStandardRegistry().ValidateStream("body", raw)
	assert.Len(t, validationErrors(t, err), 3)
}

func TestValidateStream_EmptyIsValid(t *testing.T) {
	r := blocks.NewStandardRegistry()
	for _, raw := range []string{"", "null", "[]"} {
		s, err := r.ValidateStream("promotions", json.RawMessage(raw))
		assert.NoError(t, err, raw)
		assert.Empty(t, s)
	}
}

func TestValidateStream_ChooserIDs(t *testing.T) {
	raw := json.RawMessage(`[{"type": "image_block", "value": {"image": 42}}, {"type": "document", "value": "doc-7"}]`)
	s, err := blocks.NewStandardRegistry().ValidateStream("body", raw)
	require.NoError(t, err)

	assert.Equal(t, "42", s[0].Value.(*blocks.StructValue).String("image"))
	assert.Equal(t, "doc-7", s[1].Value)
}

func TestStreamValue_RoundTrip(t *testing.T) {
	r := blocks.NewStandardRegistry()
	raw := json.RawMessage(`[{"type": "Ratings", "value": {"five": 3, "two": "1"}, "id": "r1"}]`)
	s, err := r.ValidateStream("ratings", raw)
	require.NoError(t, err)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type": "Ratings", "id": "r1", "value": {"five": 3, "four": 0, "three": 0, "two": 1, "one": 0}}]`, string(out))

	again, err := r.ValidateStream("ratings", out)
	require.NoError(t, err)
	assert.Equal(t, 4, blocks.RatingsFromStruct(again[0].Value.(*blocks.StructValue)).Total)
}

func TestParseStream_Lenient(t *testing.T) {
	r := blocks.NewStandardRegistry()
	raw := json.RawMessage(`[{"type": "retired_block", "value": 1}, {"type": "paragraph_block", "value": "<p>ok</p>", "id": "p"}]`)
	s := r.ParseStream("body", raw)
	require.Len(t, s, 1)
	assert.Equal(t, "p", s[0].ID)
	assert.Nil(t, r.ParseStream("sidebar", raw))
}

func TestCheckPhone(t *testing.T) {
	assert.NoError(t, blocks.CheckPhone("+595 981 123 456"))
	assert.NoError(t, blocks.CheckPhone("0981-123-456"))
	assert.Error(t, blocks.CheckPhone("12345"))
	assert.Error(t, blocks.CheckPhone("call us"))
}

func TestFAQsIn(t *testing.T) {
	raw := json.RawMessage(`[
		{"type": "faq", "value": {"item": [{"question": "a", "answer": "x"}]}},
		{"type": "paragraph_block", "value": "<p>between</p>"},
		{"type": "faq", "value": {"title": "Más", "item": [{"question": "b", "answer": "y"}, {"question": "c", "answer": "z"}]}}
	]`)
	s, err := blocks.NewStandardRegistry().ValidateStream("body", raw)
	require.NoError(t, err)

	faqs := blocks.FAQsIn(s)
	require.Len(t, faqs, 2)
	assert.Equal(t, "Más", faqs[1].Title)
	assert.Equal(t, "c", faqs[1].Items[1].Question)
}
