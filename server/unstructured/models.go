package unstructured

type Partition struct {
	ID   string `json:"element_id"`
	Type string `json:"type"`

	Text string `json:"text"`

	Metadata PartitionMetadata `json:"metadata"`
}

type PartitionMetadata struct {
	FileName   string `json:"filename,omitempty"`
	PageNumber int    `json:"page_number,omitempty"`

	TextAsHTML string `json:"text_as_html,omitempty"`
}
