package firestore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-map/internal/model"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func TestStateMapRoundTrip(t *testing.T) {
	states := []model.State{
		{
			ID: "STO", Name: "Stockholm", Latitude: model.Pair(59.33, 18.07),
			Region: strp("Svealand"), Country: strp("Sweden"), MultiChurchState: boolp(true),
			Churches: []model.Church{{
				ID: "c1", Name: "S:t Georgios", Family: "Grekisk-ortodoxa", Location: "Stockholm",
				Img: "g.jpg", Latitude: model.Pair(59.34, 18.06), Address: strp("Birger Jarlsgatan 92"),
				Socials: []model.Social{{Name: model.YouTube, SocialURL: "https://youtube.com/@g"}},
			}},
		},
		{
			ID: "GBG", Name: "Göteborg", Latitude: model.Pair(57.7, 12), IsFriend: boolp(false),
			Family: strp("Serbisk-ortodoxa"), Location: strp("Göteborg"), Img: strp("s.jpg"),
			LocationURL: strp("https://maps.example.org/gbg"),
			Socials:     []model.Social{{Name: model.Instagram, SocialURL: "https://instagram.com/s"}},
		},
	}

	for i, st := range states {
		m := stateToMap(st, i, "20260101-000000")
		assert.Equal(t, i, m["position"])
		assert.Equal(t, "20260101-000000", m["batch_id"])

		got, err := mapToState(m)
		require.NoError(t, err)
		if diff := cmp.Diff(st, got); diff != "" {
			t.Errorf("state %s mismatch (-want +got):\n%s", st.ID, diff)
		}
	}
}

func TestMapToStateIntegerCoordinates(t *testing.T) {
	st, err := mapToState(map[string]interface{}{
		"id":       "X",
		"name":     "X",
		"latitude": []interface{}{int64(10), 20.5},
	})
	require.NoError(t, err)
	assert.Equal(t, model.Pair(10, 20.5), st.Latitude)
}

func TestMapToStateBadCoordinates(t *testing.T) {
	_, err := mapToState(map[string]interface{}{"id": "X", "latitude": []interface{}{1.0}})
	assert.ErrorContains(t, err, "latitude")

	_, err = mapToState(map[string]interface{}{"id": "X", "latitude": []interface{}{1.0, 2.0},
		"churches": []interface{}{map[string]interface{}{"id": "c", "latitude": "nope"}}})
	assert.ErrorContains(t, err, "churches[0]")
}

func TestDocIDStable(t *testing.T) {
	assert.Equal(t, docID("a/b"), docID("a/b"))
	assert.NotEqual(t, docID("a"), docID("b"))
	assert.Len(t, docID("a"), 32)
}
