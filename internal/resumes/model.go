package resumes

// Section is a named, ordered block of résumé content. Order is significant
// and fixed by the store.
type Section struct {
	Title        string `json:"title"`
	OriginalText string `json:"originalText"`
}
