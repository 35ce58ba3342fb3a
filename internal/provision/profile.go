package provision

import "encoding/json"

// Profile holds the two optional views of a connection profile returned by
// the panel: the raw connection key and the subscription link. Either or
// both may be empty.
type Profile struct {
	DirectKey    string
	DetailedLink string
}

// ParseProfile extracts the ipv4 and normal_sub fields from a profile
// response body. Extraction is best effort: any decode failure, a non-object
// payload, or missing/null fields simply leave the corresponding Profile
// fields empty. It never fails the caller.
func ParseProfile(body string) Profile {
	var raw struct {
		IPv4      *string `json:"ipv4"`
		NormalSub *string `json:"normal_sub"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Profile{}
	}

	var p Profile
	if raw.IPv4 != nil {
		p.DirectKey = *raw.IPv4
	}
	if raw.NormalSub != nil {
		p.DetailedLink = *raw.NormalSub
	}
	return p
}
