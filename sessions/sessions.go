// Package sessions stores transient per-session key/value items produced
// during an external identity-provider login. Items are loosely typed
// strings; the external token bridge reconstructs provider tokens from them.
package sessions

// Items is the loosely-typed key/value bag of one session.
type Items map[string]string

// Clone returns a copy of the items.
func (i Items) Clone() Items {
	cloned := make(Items, len(i))
	for k, v := range i {
		cloned[k] = v
	}
	return cloned
}

// Repo stores session items keyed by session id.
type Repo interface {
	Put(sessionID, key, value string) error
	Items(sessionID string) (Items, error)
	Delete(sessionID string) error
}
