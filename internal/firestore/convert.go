package firestore

import (
	"fmt"

	"church-map/internal/model"
)

func stateToMap(st model.State, position int, batchID string) map[string]interface{} {
	m := map[string]interface{}{
		"id":       st.ID,
		"name":     st.Name,
		"latitude": []interface{}{st.Latitude.Lat, st.Latitude.Lng},
		"position": position,
		"batch_id": batchID,
	}
	putString(m, "region", st.Region)
	putString(m, "country", st.Country)
	putString(m, "family", st.Family)
	putString(m, "location", st.Location)
	putString(m, "img", st.Img)
	putString(m, "locationUrl", st.LocationURL)
	putString(m, "address", st.Address)
	if st.IsFriend != nil {
		m["isFriend"] = *st.IsFriend
	}
	if st.MultiChurchState != nil {
		m["multiChurchState"] = *st.MultiChurchState
	}
	if len(st.Socials) > 0 {
		m["socials"] = socialsToList(st.Socials)
	}
	if len(st.Churches) > 0 {
		churches := make([]interface{}, 0, len(st.Churches))
		for _, c := range st.Churches {
			churches = append(churches, churchToMap(c))
		}
		m["churches"] = churches
	}
	return m
}

func churchToMap(c model.Church) map[string]interface{} {
	m := map[string]interface{}{
		"id":       c.ID,
		"name":     c.Name,
		"family":   c.Family,
		"location": c.Location,
		"img":      c.Img,
		"latitude": []interface{}{c.Latitude.Lat, c.Latitude.Lng},
	}
	putString(m, "address", c.Address)
	putString(m, "locationUrl", c.LocationURL)
	if len(c.Socials) > 0 {
		m["socials"] = socialsToList(c.Socials)
	}
	return m
}

func socialsToList(socials []model.Social) []interface{} {
	out := make([]interface{}, 0, len(socials))
	for _, s := range socials {
		out = append(out, map[string]interface{}{
			"name":      string(s.Name),
			"socialUrl": s.SocialURL,
		})
	}
	return out
}

func putString(m map[string]interface{}, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func mapToState(m map[string]interface{}) (model.State, error) {
	st := model.State{}

	st.ID, _ = m["id"].(string)
	st.Name, _ = m["name"].(string)
	ll, err := toLatLng(m["latitude"])
	if err != nil {
		return st, fmt.Errorf("latitude: %w", err)
	}
	st.Latitude = ll

	st.Region = getString(m, "region")
	st.Country = getString(m, "country")
	st.Family = getString(m, "family")
	st.Location = getString(m, "location")
	st.Img = getString(m, "img")
	st.LocationURL = getString(m, "locationUrl")
	st.Address = getString(m, "address")
	if v, ok := m["isFriend"].(bool); ok {
		st.IsFriend = &v
	}
	if v, ok := m["multiChurchState"].(bool); ok {
		st.MultiChurchState = &v
	}
	st.Socials = toSocials(m["socials"])

	if list, ok := m["churches"].([]interface{}); ok {
		for i, item := range list {
			cm, ok := item.(map[string]interface{})
			if !ok {
				return st, fmt.Errorf("churches[%d]: not a map", i)
			}
			c, err := mapToChurch(cm)
			if err != nil {
				return st, fmt.Errorf("churches[%d]: %w", i, err)
			}
			st.Churches = append(st.Churches, c)
		}
	}
	return st, nil
}

func mapToChurch(m map[string]interface{}) (model.Church, error) {
	c := model.Church{}
	c.ID, _ = m["id"].(string)
	c.Name, _ = m["name"].(string)
	c.Family, _ = m["family"].(string)
	c.Location, _ = m["location"].(string)
	c.Img, _ = m["img"].(string)
	ll, err := toLatLng(m["latitude"])
	if err != nil {
		return c, fmt.Errorf("latitude: %w", err)
	}
	c.Latitude = ll
	c.Address = getString(m, "address")
	c.LocationURL = getString(m, "locationUrl")
	c.Socials = toSocials(m["socials"])
	return c, nil
}

func toSocials(v interface{}) []model.Social {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []model.Social
	for _, item := range list {
		sm, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := sm["name"].(string)
		url, _ := sm["socialUrl"].(string)
		out = append(out, model.Social{Name: model.Platform(name), SocialURL: url})
	}
	return out
}

func getString(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok {
		return &v
	}
	return nil
}

// toLatLng accepts the []interface{} Firestore returns for arrays. Whole
// numbers may come back as int64.
func toLatLng(v interface{}) (model.LatLng, error) {
	list, ok := v.([]interface{})
	if !ok || len(list) != 2 {
		return model.LatLng{}, fmt.Errorf("expected a pair of numbers, got %v", v)
	}
	var pair [2]float64
	for i, x := range list {
		switch n := x.(type) {
		case float64:
			pair[i] = n
		case int64:
			pair[i] = float64(n)
		default:
			return model.LatLng{}, fmt.Errorf("component %d is %T", i, x)
		}
	}
	return model.Pair(pair[0], pair[1]), nil
}
