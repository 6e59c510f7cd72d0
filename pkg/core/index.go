package core

// KeyIndex is a secondary index over the primary store's key set. The engine
// keeps every KeyIndex holding exactly the primary store's keys.
type KeyIndex interface {
	Insert(key string)
	Contains(key string) bool
	Len() int
	Reset()
}
