package transform

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/zeebo/xxh3"
)

// Fingerprint вычисляет xxh3-хеш (64 бита) по содержательным полям
// нормализованной записи. Используется при пропуске дубликата по
// бизнес-ключу: если отпечаток существующей строки отличается,
// предупреждение сообщает о расхождении содержимого.
func Fingerprint(fields ...string) string {
	h := xxh3.Hash([]byte(strings.Join(fields, "\x1f")))

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], h)
	return hex.EncodeToString(buf[:])
}
