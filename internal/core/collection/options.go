package collection

var subcategoryOptions = []string{
	"Vestidos",
	"Dos piezas",
	"Blazers",
	"Jumpsuits",
	"Vestidos de fiesta",
	"Blusas",
	"Pantalones",
	"Camisetas",
	"Cardigans",
	"Faldas",
	"Jeans",
	"Vestidos Plus Size",
	"Cardigans Plus Size",
	"Coat Plus",
	"Jeans Plus",
	"Pantalones Plus",
	"Coat & Jackets",
	"Sweaters",
	"Men",
	"Baby",
	"Maternity",
	"Tenis",
	"Sport",
	"Lingerie",
	"Pijamas",
	"Tops",
	"Shorts",
}

// SubcategoryOptions lists the subcategories a reviewer can pick from when
// overriding a staged record.
func SubcategoryOptions() []string {
	out := make([]string, len(subcategoryOptions))
	copy(out, subcategoryOptions)
	return out
}
