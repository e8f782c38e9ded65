package domain

// CaptureResult describes one successful image capture on a node.
type CaptureResult struct {
	Filename  string  `json:"filename"`
	Duration  float64 `json:"duration"`
	SizeBytes int64   `json:"size_bytes"`
}

// ImageFileInfo describes one image file held by a node.
type ImageFileInfo struct {
	Name   string  `json:"name"`
	Size   int64   `json:"size"`
	SizeMB float64 `json:"size_mb"`
}

// ImageInventory summarizes the image files held by a node.
type ImageInventory struct {
	Count          int             `json:"count"`
	TotalSizeBytes int64           `json:"total_size_bytes"`
	TotalSizeMB    float64         `json:"total_size_mb"`
	Files          []ImageFileInfo `json:"files"`
}
