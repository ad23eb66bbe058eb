package records

// Region identifies a province or a city
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Provinces are the 34 provinces in BPS code order
var Provinces = []Region{
	{"11", "Aceh"},
	{"12", "Sumatera Utara"},
	{"13", "Sumatera Barat"},
	{"14", "Riau"},
	{"15", "Jambi"},
	{"16", "Sumatera Selatan"},
	{"17", "Bengkulu"},
	{"18", "Lampung"},
	{"19", "Kepulauan Bangka Belitung"},
	{"21", "Kepulauan Riau"},
	{"31", "DKI Jakarta"},
	{"32", "Jawa Barat"},
	{"33", "Jawa Tengah"},
	{"34", "DI Yogyakarta"},
	{"35", "Jawa Timur"},
	{"36", "Banten"},
	{"51", "Bali"},
	{"52", "Nusa Tenggara Barat"},
	{"53", "Nusa Tenggara Timur"},
	{"61", "Kalimantan Barat"},
	{"62", "Kalimantan Tengah"},
	{"63", "Kalimantan Selatan"},
	{"64", "Kalimantan Timur"},
	{"65", "Kalimantan Utara"},
	{"71", "Sulawesi Utara"},
	{"72", "Sulawesi Tengah"},
	{"73", "Sulawesi Selatan"},
	{"74", "Sulawesi Tenggara"},
	{"75", "Gorontalo"},
	{"76", "Sulawesi Barat"},
	{"81", "Maluku"},
	{"82", "Maluku Utara"},
	{"91", "Papua Barat"},
	{"94", "Papua"},
}

// PriceCities are the CPI cities; code 000 is the national index
var PriceCities = []Region{
	{"000", "Indonesia"},
	{"001", "Jakarta"},
	{"002", "Surabaya"},
	{"003", "Bandung"},
	{"004", "Medan"},
	{"005", "Semarang"},
	{"006", "Makassar"},
	{"007", "Denpasar"},
	{"008", "Jayapura"},
}
