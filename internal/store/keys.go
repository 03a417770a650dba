package store

import (
	"bytes"

	"github.com/freeeve/repertoire/internal/board"
)

const (
	prefixGame  = "g/"
	prefixStudy = "s/"
	prefixEval  = "e/"
)

func collectionPrefix(collection string) []byte {
	return []byte(prefixGame + collection + "\x00")
}

func gameKey(collection, key string) []byte {
	return append(collectionPrefix(collection), key...)
}

// collectionOf extracts the collection name from a game key.
func collectionOf(key []byte) (string, bool) {
	rest := key[len(prefixGame):]
	i := bytes.IndexByte(rest, 0)
	if i < 0 {
		return "", false
	}
	return string(rest[:i]), true
}

func studyKey(name string) []byte {
	return []byte(prefixStudy + name)
}

// evalKey drops the move counters so an evaluation serves every move order.
func evalKey(fen string) []byte {
	return []byte(prefixEval + board.Key(fen))
}
