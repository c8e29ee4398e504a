package menu

import "github.com/shopspring/decimal"

func item(id int, name, price string, cat Category, icon string) Item {
	return Item{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: cat,
		Icon:     icon,
	}
}

var defaultItems = []Item{
	item(1, "Espresso", "3.50", CategoryCoffee, "☕"),
	item(2, "Cappuccino", "4.50", CategoryCoffee, "☕"),
	item(3, "Café Latte", "4.75", CategoryCoffee, "🥛"),
	item(4, "Americano", "3.75", CategoryCoffee, "☕"),
	item(5, "Mocha", "5.00", CategoryCoffee, "🍫"),
	item(6, "Macchiato", "3.75", CategoryCoffee, "☕"),

	item(7, "Croissant", "3.25", CategoryPastry, "🥐"),
	item(8, "Pain au Chocolat", "3.50", CategoryPastry, "🥐"),
	item(9, "Éclair", "4.50", CategoryPastry, "🧁"),
	item(10, "Mille-feuille", "5.25", CategoryPastry, "🍰"),
	item(11, "Madeleine", "2.75", CategoryPastry, "🧁"),
	item(12, "Tarte aux Fruits", "4.75", CategoryPastry, "🥧"),

	item(13, "Vanilla", "4.00", CategoryIceCream, "🍦"),
	item(14, "Chocolate", "4.00", CategoryIceCream, "🍦"),
	item(15, "Strawberry", "4.00", CategoryIceCream, "🍓"),
	item(16, "Pistachio", "4.50", CategoryIceCream, "🍦"),
	item(17, "Caramel", "4.25", CategoryIceCream, "🍮"),
	item(18, "Hazelnut", "4.50", CategoryIceCream, "🌰"),

	item(19, "Margherita", "12.99", CategoryPizza, "🍕"),
	item(20, "Pepperoni", "14.99", CategoryPizza, "🍕"),
	item(21, "Quattro Formaggi", "15.99", CategoryPizza, "🧀"),
	item(22, "Vegetariana", "13.99", CategoryPizza, "🍕"),
	item(23, "Prosciutto e Funghi", "15.99", CategoryPizza, "🍕"),
	item(24, "Diavola", "14.99", CategoryPizza, "🌶️"),

	item(25, "Croque Monsieur", "8.99", CategorySandwich, "🥪"),
	item(26, "Croque Madame", "9.99", CategorySandwich, "🥪"),
	item(27, "Italian Sub", "9.50", CategorySandwich, "🥖"),
	item(28, "Chicken Pesto", "10.50", CategorySandwich, "🥪"),
	item(29, "Caprese Panini", "8.99", CategorySandwich, "🍅"),
	item(30, "Club Sandwich", "11.99", CategorySandwich, "🥪"),

	item(31, "Tiramisu", "6.99", CategoryDessert, "🍰"),
	item(32, "Gulab Jamun", "5.50", CategoryDessert, "🍡"),
	item(33, "Panna Cotta", "6.50", CategoryDessert, "🍮"),
	item(34, "Crème Brûlée", "7.50", CategoryDessert, "🍮"),
	item(35, "Cannoli", "5.99", CategoryDessert, "🧁"),
	item(36, "Rasmalai", "6.50", CategoryDessert, "🥛"),
}

// Default returns the house menu.
func Default() *Catalog {
	c, err := NewCatalog(defaultItems)
	if err != nil {
		panic(err)
	}
	return c
}
