package entity

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var categories = []Category{
	{ID: "autos", Name: "Autos"},
	{ID: "electronica", Name: "Electrónica"},
	{ID: "hogar", Name: "Hogar"},
	{ID: "ropa", Name: "Ropa"},
	{ID: "otros", Name: "Otros"},
}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func CategoryIDs() []string {
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids
}

func GetCategory(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func IsValidCategory(id string) bool {
	_, ok := GetCategory(id)
	return ok
}
