package moderation

// Category группирует запрещённые термины по типу нарушения.
type Category struct {
	Name  string
	Terms []string
}

// Vocabulary — закрытый словарь запрещённого контента. Передаётся сканеру
// при конструировании; логика сопоставления от содержимого не зависит.
type Vocabulary struct {
	Categories []Category
}

// DefaultVocabulary возвращает словарь политики площадки.
// Многословные термины ("knife sale") добавлены сознательно: одиночное
// слово ("knife") допустимо в безобидных объявлениях, а фраза — нет.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Categories: []Category{
			{
				Name: "weapons",
				Terms: []string{
					"gun", "guns", "firearm", "firearms", "pistol", "handgun",
					"rifle", "shotgun", "ammunition", "ammo",
					"switchblade", "brass knuckles", "knife sale", "knives for sale",
					"taser", "stun gun", "pepper spray bulk",
				},
			},
			{
				Name: "controlled substances",
				Terms: []string{
					"cocaine", "heroin", "methamphetamine", "meth", "crack cocaine",
					"fentanyl", "oxycodone", "xanax", "adderall", "ritalin",
					"mdma", "ecstasy", "lsd", "psilocybin", "ketamine",
					"weed", "marijuana", "cannabis", "edibles", "vape carts",
					"nicotine pods bulk", "prescription pills",
				},
			},
			{
				Name: "counterfeit goods",
				Terms: []string{
					"counterfeit", "replica watch", "replica watches", "fake id",
					"fake ids", "knockoff", "knock-off", "bootleg",
					"fake designer", "replica sneakers",
				},
			},
			{
				Name: "identity and credentials",
				Terms: []string{
					"social security number", "ssn for sale", "stolen identity",
					"credit card numbers", "card dumps", "fullz",
					"passport for sale", "drivers license for sale",
					"student id for sale", "login credentials",
				},
			},
			{
				Name: "illegal services",
				Terms: []string{
					"essay writing service", "take your exam", "exam impersonation",
					"write your thesis", "homework for money", "test answers for sale",
					"hacking service", "account hacking", "grade change",
				},
			},
			{
				Name: "adult services",
				Terms: []string{
					"escort", "escorts", "sugar daddy", "sugar baby",
					"adult services", "happy ending", "sexual services",
				},
			},
			{
				Name: "protected wildlife",
				Terms: []string{
					"ivory", "rhino horn", "tiger pelt", "turtle shell",
					"exotic animal sale", "endangered species",
				},
			},
		},
	}
}
