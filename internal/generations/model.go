package generations

// Generation modes.
const (
	ModeStandard      = "standard"
	ModeUIPlaceholder = "ui-placeholder"
)

// GenerationRecord is one image-generation result. The prompt is the final,
// possibly augmented, prompt actually sent to the model.
type GenerationRecord struct {
	ID          string  `json:"id"`
	Timestamp   int64   `json:"timestamp"`
	Prompt      string  `json:"prompt"`
	AspectRatio *string `json:"aspectRatio,omitempty"`
	Mode        string  `json:"mode"`
	ImageData   *string `json:"imageData,omitempty"`
	RefImage    *string `json:"refImage,omitempty"`
	ImageKey    string  `json:"imageKey,omitempty"`
}
