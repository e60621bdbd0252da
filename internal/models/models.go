package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Address{},
		&Ingredient{},
		&Pizza{},
		&FavoritePizza{},
		&Order{},
		&OrderPizza{},
		&OrderPizzaIngredient{},
		&OAuthClient{},
		&OAuthToken{},
	}
}
