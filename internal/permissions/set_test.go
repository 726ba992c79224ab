package permissions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, payload string) *Set {
	t.Helper()
	set, err := Decode([]byte(payload))
	require.NoError(t, err)
	return set
}

func TestDecodeEnvelopeAndLegacyFlat(t *testing.T) {
	enveloped := mustDecode(t, `{"sections":{"leads":{"view":"self","edit":"self"}}}`)
	flat := mustDecode(t, `{"leads":{"view":"self","edit":"self"}}`)

	for _, set := range []*Set{enveloped, flat} {
		assert.Equal(t, ScopeSelf, set.Scope("leads", ActionView))
		assert.Equal(t, ScopeSelf, set.Scope("leads", ActionEdit))
		assert.Equal(t, ScopeDeny, set.Scope("leads", ActionDelete))
	}
}

func TestDenyByDefault(t *testing.T) {
	set := mustDecode(t, `{"sections":{"leads":{"view":"all"}}}`)

	assert.False(t, set.Has("quotations", ActionView))
	assert.Equal(t, ScopeDeny, set.Scope("quotations", ActionView))
	assert.False(t, set.Has("leads", ActionDelete))
	assert.False(t, set.Has("", ActionView))

	var nilSet *Set
	assert.False(t, nilSet.Has("leads", ActionView))
	assert.Equal(t, ScopeDeny, nilSet.Scope("leads", ActionView))
}

func TestLegacyBooleanNormalizesToAll(t *testing.T) {
	set := mustDecode(t, `{"sections":{"leads":{"view":true,"create":false}}}`)

	assert.Equal(t, ScopeAll, set.Scope("leads", ActionView))
	assert.Equal(t, ScopeDeny, set.Scope("leads", ActionCreate))
}

func TestUnrecognizedScopeStringDenies(t *testing.T) {
	set := mustDecode(t, `{"sections":{"leads":{"view":"everything","edit":"SELF"}}}`)

	assert.Equal(t, ScopeDeny, set.Scope("leads", ActionView))
	assert.Equal(t, ScopeDeny, set.Scope("leads", ActionEdit))
}

func TestCompositeKeyExplicitChildWins(t *testing.T) {
	set := mustDecode(t, `{"sections":{"admin":{"view":"all","roles":{"view":"team","edit":"team"}}}}`)

	assert.Equal(t, ScopeTeam, set.Scope("admin.roles", ActionView))
	assert.Equal(t, ScopeTeam, set.Scope("admin.roles", ActionEdit))
	assert.Equal(t, ScopeAll, set.Scope("admin", ActionView))
}

func TestCompositeKeyParentFallbackIsViewOnly(t *testing.T) {
	set := mustDecode(t, `{"sections":{"admin":{"view":true}}}`)

	// Blanket parent access reads through to children...
	assert.True(t, set.Has("admin.roles", ActionView))
	assert.Equal(t, ScopeAll, set.Scope("admin.roles", ActionView))

	// ...but never grants write actions on them.
	assert.False(t, set.Has("admin.roles", ActionEdit))
	assert.False(t, set.Has("admin.roles", ActionDelete))
	assert.False(t, set.Has("admin.roles", ActionCreate))
}

func TestCompositeKeyMissingParentDenies(t *testing.T) {
	set := mustDecode(t, `{"sections":{"leads":{"view":"all"}}}`)

	assert.False(t, set.Has("admin.roles", ActionView))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte(`not json at all`))
	assert.Error(t, err)

	_, err = Decode([]byte(`[1,2,3]`))
	assert.Error(t, err)
}

func TestSetRoundTripKeepsEnvelope(t *testing.T) {
	set := mustDecode(t, `{"sections":{"leads":{"view":"team"},"admin":{"view":"all","roles":{"edit":"all"}}}}`)

	data, err := json.Marshal(set)
	require.NoError(t, err)

	again, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ScopeTeam, again.Scope("leads", ActionView))
	assert.Equal(t, ScopeAll, again.Scope("admin.roles", ActionEdit))
}

func TestValidatePayload(t *testing.T) {
	valid := []string{
		`{"sections":{"leads":{"view":"self","create":false,"edit":true}}}`,
		`{"leads":{"view":"all"}}`,
		`{"sections":{"admin":{"view":"all","roles":{"view":"team"}}}}`,
		`{"sections":{}}`,
	}
	for _, payload := range valid {
		assert.NoError(t, ValidatePayload([]byte(payload)), payload)
	}

	invalid := []string{
		`"just a string"`,
		`{"sections":{"leads":"yes"}}`,
		`{"sections":{"leads":{"view":"everything"}}}`,
		`{"sections":{"leads":{"view":42}}}`,
		`{"sections":{"admin":{"roles":{"edit":"global"}}}}`,
	}
	for _, payload := range invalid {
		assert.Error(t, ValidatePayload([]byte(payload)), payload)
	}
}
