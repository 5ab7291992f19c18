package contracts

import "context"

// TextReader turns a stored document into plain text
// ⭐ SSOT: PDF 텍스트 추출 인터페이스
type TextReader interface {
	ReadText(ctx context.Context, path string) (string, error)
}

// Extractor turns document text into the structured envelope
// ⭐ SSOT: 구조화 추출 인터페이스
type Extractor interface {
	ExtractStructured(ctx context.Context, text string) (*Envelope, error)
}

// MemoryProbe reports the tools exposed by the process memory server.
// Implementations never fail; an unreachable server is Connected=false.
type MemoryProbe interface {
	ListTools(ctx context.Context) MemoryStatus
}
