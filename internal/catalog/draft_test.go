package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"150", "150", false},
		{" 19.99 ", "19.99", false},
		{"", "0", false},
		{"0", "0", false},
		{"-1", "", true},
		{"abc", "", true},
		{"1e2", "100", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, FieldPrice, ve.Field)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"10", 10, false},
		{"", 0, false},
		{" 3 ", 3, false},
		{"010", 10, false},
		{"0x10", 0, true},
		{"2.5", 0, true},
		{"-4", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, FieldQuantity, ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDraft_SetMutatesOneField(t *testing.T) {
	var d Draft
	require.NoError(t, d.Set(FieldName, "SPO2 Sensor"))
	require.NoError(t, d.Set(FieldModel, "YM2000"))
	require.NoError(t, d.Set(FieldOrigin, "China"))
	require.NoError(t, d.Set(FieldBrand, "Yonker"))
	require.NoError(t, d.Set(FieldDescription, "Finger pulse oximeter"))
	require.NoError(t, d.Set(FieldPrice, "150"))
	require.NoError(t, d.Set(FieldQuantity, "10"))

	assert.Equal(t, "SPO2 Sensor", d.Name)
	assert.Equal(t, "YM2000", d.Model)
	assert.Equal(t, "China", d.Origin)
	assert.Equal(t, "Yonker", d.Brand)
	assert.True(t, decimal.NewFromInt(150).Equal(d.Price))
	assert.Equal(t, 10, d.Quantity)
	assert.True(t, d.Image.IsZero())
}

func TestDraft_InvalidNumericLeavesValue(t *testing.T) {
	var d Draft
	require.NoError(t, d.Set(FieldQuantity, "7"))

	err := d.Set(FieldQuantity, "7x")
	require.Error(t, err)
	assert.Equal(t, 7, d.Quantity)
	assert.Equal(t, "Quantity: \"7x\" is not a whole number", err.Error())
}

func TestDraft_ImageURL(t *testing.T) {
	var d Draft
	require.NoError(t, d.Set(FieldImage, "https://cdn.example/p.png"))
	assert.True(t, d.Image.IsRemote())
	assert.Equal(t, "https://cdn.example/p.png", d.Text(FieldImage))

	require.NoError(t, d.Set(FieldImage, "  "))
	assert.True(t, d.Image.IsZero())
}

func TestDraft_ImageRejectsLocalPath(t *testing.T) {
	var d Draft
	require.NoError(t, d.Set(FieldImage, "https://cdn.example/p.png"))

	for _, path := range []string{"./spo2.jpg", "/tmp/spo2.jpg", "ftp://cdn.example/p.png"} {
		err := d.Set(FieldImage, path)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, path)
		assert.Equal(t, FieldImage, ve.Field)
		assert.False(t, d.Image.IsLocal())
		assert.Equal(t, "https://cdn.example/p.png", d.Image.URL, "rejected input leaves the image unchanged")
	}

	require.NoError(t, d.Set(FieldImage, "HTTP://cdn.example/P.png"))
	assert.True(t, d.Image.IsRemote())
}

func TestDraft_UnknownField(t *testing.T) {
	var d Draft
	err := d.Set(Field("sku"), "x")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, Field("sku"), ve.Field)
}

func TestDraft_Text(t *testing.T) {
	d := DraftOf(product("p-1", "Cable", 4, "2.50"))
	assert.Equal(t, "2.5", d.Text(FieldPrice))
	assert.Equal(t, "4", d.Text(FieldQuantity))

	var empty Draft
	assert.Empty(t, empty.Text(FieldPrice))
	assert.Empty(t, empty.Text(FieldQuantity))

	soldOut := DraftOf(product("p-2", "Probe", 0, "0"))
	assert.Equal(t, "0", soldOut.Text(FieldPrice))
	assert.Equal(t, "0", soldOut.Text(FieldQuantity))
}

func TestDraft_Validate(t *testing.T) {
	var d Draft
	var ve *ValidationError
	require.ErrorAs(t, d.Validate(), &ve)
	assert.Equal(t, FieldName, ve.Field)

	d.Name = "Probe"
	require.ErrorAs(t, d.Validate(), &ve)
	assert.Equal(t, FieldModel, ve.Field)

	d.Model = "P1"
	assert.NoError(t, d.Validate())
}
