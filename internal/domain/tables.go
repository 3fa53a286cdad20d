package domain

// Tables lists all models migrated on startup
var Tables = []interface{}{
	&Product{},
}
