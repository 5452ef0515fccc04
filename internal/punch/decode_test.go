package punch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecords_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		ids  []string
	}{
		{"bare array", `[{"id":"p1","username":"alice","status":"PENDING"},{"id":"p2","username":"bob","status":"PENDING"}]`, []string{"p1", "p2"}},
		{"wrapped array", `{"success":true,"data":[{"id":"p1","username":"alice","status":"PENDING"}]}`, []string{"p1"}},
		{"bare object", `{"id":"p1","username":"alice","status":"PENDING"}`, []string{"p1"}},
		{"object wrapping object", `{"data":{"id":"p7","username":"alice","status":"PENDING"}}`, []string{"p7"}},
		{"empty array", `[]`, []string{}},
		{"wrapped empty", `{"data":[]}`, []string{}},
		{"null", `null`, []string{}},
		{"empty body", ``, []string{}},
		{"whitespace", "  \n", []string{}},
	}

	for _, tt := range tests {
		for _, mode := range []DecodeMode{Lenient, Strict} {
			t.Run(tt.name, func(t *testing.T) {
				got, err := DecodeRecords([]byte(tt.body), mode)
				require.NoError(t, err)
				require.NotNil(t, got)

				ids := make([]string, len(got))
				for i, r := range got {
					ids[i] = r.ID
				}
				assert.Equal(t, tt.ids, ids)
			})
		}
	}
}

func TestDecodeRecords_FilterIsIdempotentForEveryShape(t *testing.T) {
	bodies := []string{
		`[{"id":"p1","username":"alice","status":"PENDING"}]`,
		`{"data":[{"id":"p1","username":"alice","status":"PENDING"}]}`,
		`{"id":"p1","username":"alice","status":"PENDING"}`,
	}
	for _, body := range bodies {
		list, err := DecodeRecords([]byte(body), Strict)
		require.NoError(t, err)

		once := FilterPending(list, "alice")
		twice := FilterPending(once, "alice")
		require.Len(t, once, 1)
		assert.Equal(t, once, twice)
		assert.Equal(t, "p1", once[0].ID)
	}
}

func TestDecodeRecords_Garbage(t *testing.T) {
	bodies := []string{
		`"oops"`, `42`, `[{"id":`, `{"data":[1,2]}`, `<html>`,
		`{"message":"Internal error"}`, `{"data":"oops"}`, `{"data":{}}`, `{}`,
	}

	for _, body := range bodies {
		_, err := DecodeRecords([]byte(body), Strict)
		assert.Error(t, err, "strict mode must reject %q", body)

		got, err := DecodeRecords([]byte(body), Lenient)
		assert.NoError(t, err, "lenient mode must not fail on %q", body)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	}
}

func TestDecodeRecords_UnknownShapeSentinel(t *testing.T) {
	for _, body := range []string{`true`, `{"message":"Internal error"}`, `{"data":"oops"}`} {
		_, err := DecodeRecords([]byte(body), Strict)
		assert.ErrorIs(t, err, ErrUnknownShape, body)
	}
}

func TestDecodeRecords_NullData(t *testing.T) {
	for _, mode := range []DecodeMode{Strict, Lenient} {
		got, err := DecodeRecords([]byte(`{"data":null}`), mode)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	}
}
