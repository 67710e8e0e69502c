package v1

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Codec кодирует сообщения LinkService в JSON. Клиенты выбирают его
// через grpc.CallContentSubtype(CodecName).
type Codec struct{}

// CodecName content-subtype кодека: application/grpc+json.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Marshal кодирует сообщение.
func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal декодирует сообщение.
func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name возвращает имя кодека.
func (Codec) Name() string { return CodecName }
