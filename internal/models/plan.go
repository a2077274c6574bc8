package models

// Plan описывает тарифный план, который можно активировать после оплаты.
type Plan struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Role           Role   `json:"role"`
	DurationMonths int    `json:"duration_months"`
	AmountMinor    int64  `json:"amount_minor"` // сумма в пайсах
	Currency       string `json:"currency"`
}

// Plans каталог тарифов дашборда.
var Plans = map[string]Plan{
	"user_monthly":  {ID: "user_monthly", Name: "User Plan - Monthly", Role: RoleUser, DurationMonths: 1, AmountMinor: 99900, Currency: "INR"},
	"user_yearly":   {ID: "user_yearly", Name: "User Plan - Yearly", Role: RoleUser, DurationMonths: 12, AmountMinor: 999900, Currency: "INR"},
	"admin_monthly": {ID: "admin_monthly", Name: "Admin Plan - Monthly", Role: RoleAdmin, DurationMonths: 1, AmountMinor: 499900, Currency: "INR"},
	"admin_yearly":  {ID: "admin_yearly", Name: "Admin Plan - Yearly", Role: RoleAdmin, DurationMonths: 12, AmountMinor: 4999900, Currency: "INR"},
}

// LookupPlan возвращает тариф по идентификатору.
func LookupPlan(id string) (Plan, bool) {
	p, ok := Plans[id]
	return p, ok
}
