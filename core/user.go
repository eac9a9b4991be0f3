package core

type (
	// User is an account on the platform. Password holds the bcrypt hash and
	// is never serialized.
	User struct {
		ID        string   `json:"id"`
		Username  string   `json:"username"`
		Email     string   `json:"email"`
		Password  string   `json:"-"`
		Image     string   `json:"image"`
		Drawings  []string `json:"drawings"`
		Following []string `json:"following"`
		Followers []string `json:"followers"`
	}
)

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Drawings = cloneIDs(u.Drawings)
	c.Following = cloneIDs(u.Following)
	c.Followers = cloneIDs(u.Followers)
	return &c
}

// IsFollowing reports whether u follows the user with the given id.
func (u *User) IsFollowing(id string) bool {
	return containsID(u.Following, id)
}

// PushID appends id to list unless it is already present.
func PushID(list []string, id string) []string {
	if containsID(list, id) {
		return list
	}
	return append(list, id)
}

// PullID removes every occurrence of id from list.
func PullID(list []string, id string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
