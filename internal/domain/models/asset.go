package models

// Asset is a tradable instrument. Category is an opaque label.
type Asset struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category" json:"category"`
}
