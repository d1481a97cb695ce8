package category

// Category is one of the closed set of expense categories.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

const (
	Travel         = "TRAVEL"
	Meals          = "MEALS"
	Accommodation  = "ACCOMMODATION"
	Transport      = "TRANSPORT"
	OfficeSupplies = "OFFICE_SUPPLIES"
	Communication  = "COMMUNICATION"
	Other          = "OTHER"
)

var catalog = []Category{
	{Name: Travel, Description: "Flights, trains and other long-distance travel"},
	{Name: Meals, Description: "Meals and client entertainment"},
	{Name: Accommodation, Description: "Hotels and lodging"},
	{Name: Transport, Description: "Taxis, public transport, fuel and parking"},
	{Name: OfficeSupplies, Description: "Stationery and small office equipment"},
	{Name: Communication, Description: "Phone, internet and postage"},
	{Name: Other, Description: "Anything not covered by another category"},
}

func (c Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		Name:        c.Name,
		Description: c.Description,
	}
}

// Names returns the category names in catalog order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, c := range catalog {
		names[i] = c.Name
	}
	return names
}

func IsValid(name string) bool {
	for _, c := range catalog {
		if c.Name == name {
			return true
		}
	}
	return false
}
