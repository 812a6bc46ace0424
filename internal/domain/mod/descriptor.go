package mod

// DescriptorFilename is the reserved name of the descriptor inside the package,
// and of the project configuration at the project root.
const DescriptorFilename = "mod.json"

// Digests maps slash-separated paths relative to the staging root to hex digests.
type Digests map[string]string

// Descriptor is the package metadata the host reads from mod.json.
// Field order is the serialized order.
type Descriptor struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Description  string         `json:"description"`
	Entry        string         `json:"entry"`
	SDKVersion   string         `json:"sdkVersion"`
	Integrity    Digests        `json:"integrity"`
	Dependencies *DependencyMap `json:"dependencies"`
}
