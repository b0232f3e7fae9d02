package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbedded_LoadsBundledCatalog(t *testing.T) {
	products, err := Embedded()
	require.NoError(t, err)
	require.NotEmpty(t, products)

	seen := map[string]bool{}
	for _, p := range products {
		require.NotEmpty(t, p.SKU)
		require.NotEmpty(t, p.Name)
		require.NotEmpty(t, p.Category)
		require.False(t, seen[p.SKU], "duplicate sku %s", p.SKU)
		seen[p.SKU] = true
	}
}

func TestEmbedded_RoundTripsThroughJSON(t *testing.T) {
	products, err := Embedded()
	require.NoError(t, err)

	raw, err := json.Marshal(products)
	require.NoError(t, err)
	require.JSONEq(t, string(embeddedProducts), string(raw))
}

func TestDecodeJSON_ReencodesEntriesUnchanged(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{name: "empty tags and zero stock", in: `[{"name":"Wallbox","price":19900,"sku":"CH-01","category":"charger","tags":[],"stock":0}]`},
		{name: "unknown keys", in: `[{"name":"BYD Dolphin","price":699900,"sku":"DOLPHIN","category":"hatchback","brand":"BYD","specs":{"range_km":410}}]`},
		{name: "explicit null optional", in: `[{"name":"Cable","price":4500,"sku":"CB-02","category":"accessory","warranty_months":null,"tags":null}]`},
		{name: "absent optionals", in: `[{"name":"Cable","price":4500,"sku":"CB-02","category":"accessory"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			products, err := DecodeJSON([]byte(tc.in))
			require.NoError(t, err)

			raw, err := json.Marshal(products)
			require.NoError(t, err)
			require.JSONEq(t, tc.in, string(raw))
		})
	}
}

func TestDecodeJSON_EmptyTagsDistinctFromAbsent(t *testing.T) {
	products, err := DecodeJSON([]byte(`[{"sku":"A","tags":[]},{"sku":"B"}]`))
	require.NoError(t, err)
	require.NotNil(t, products[0].Tags)
	require.Empty(t, products[0].Tags)
	require.Nil(t, products[1].Tags)
	require.Nil(t, products[0].Extra)
}

func TestStatic_ReturnsCopy(t *testing.T) {
	s := Static{{SKU: "A"}}
	out, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	out[0].SKU = "B"
	require.Equal(t, "A", s[0].SKU)
}

func TestFile_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "products.json")
	yamlPath := filepath.Join(dir, "products.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"name":"BYD Seal","price":1325000,"sku":"SEAL","category":"sedan","tags":["awd"]}]`), 0o600))
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
- name: BYD Seal
  price: 1325000
  sku: SEAL
  category: sedan
  warranty_months: 96
  tags: [awd]
`), 0o600))

	fromJSON, err := File{Path: jsonPath}.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, fromJSON, 1)
	require.Nil(t, fromJSON[0].WarrantyMonths)

	fromYAML, err := File{Path: yamlPath}.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, fromYAML, 1)
	require.Equal(t, "SEAL", fromYAML[0].SKU)
	require.Equal(t, 96, *fromYAML[0].WarrantyMonths)
	require.Equal(t, []string{"awd"}, fromYAML[0].Tags)
}

func TestFile_Errors(t *testing.T) {
	_, err := File{Path: " "}.ListProducts(context.Background())
	require.ErrorContains(t, err, "must not be empty")

	_, err = File{Path: filepath.Join(t.TempDir(), "missing.json")}.ListProducts(context.Background())
	require.ErrorContains(t, err, "reading")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"name":"not an array"}`), 0o600))
	_, err = File{Path: bad}.ListProducts(context.Background())
	require.ErrorContains(t, err, "decode json")
}

func TestDecode_RejectsNull(t *testing.T) {
	_, err := DecodeJSON([]byte(`null`))
	require.Error(t, err)

	_, err = DecodeYAML([]byte(``))
	require.Error(t, err)
}
