package domain

// Category is a product family offered in the order flow.
type Category struct {
	Key           string   `json:"key" yaml:"key" mapstructure:"key"`
	Name          string   `json:"name" yaml:"name" mapstructure:"name"`
	Icon          string   `json:"icon,omitempty" yaml:"icon" mapstructure:"icon"`
	Description   string   `json:"description,omitempty" yaml:"description" mapstructure:"description"`
	Subcategories []string `json:"subcategories" yaml:"subcategories" mapstructure:"subcategories"`

	// StandardSizes is empty when the category only accepts custom dimensions.
	StandardSizes []string `json:"standard_sizes,omitempty" yaml:"standard_sizes" mapstructure:"standard_sizes"`

	// RequiresExport enables the ISPM-15 usage question.
	RequiresExport bool `json:"requires_export" yaml:"requires_export" mapstructure:"requires_export"`
}

// HasStandardSizes reports whether the size mode question applies.
func (c Category) HasStandardSizes() bool {
	return len(c.StandardSizes) > 0
}

// Label renders the icon and name for display.
func (c Category) Label() string {
	if c.Icon == "" {
		return c.Name
	}
	return c.Icon + " " + c.Name
}
