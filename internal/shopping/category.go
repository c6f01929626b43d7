package shopping

import (
	"fmt"
	"strings"
)

// Category is one of the fixed shopping categories. Declaration order is
// the classification priority order and the display order of a grouped
// shopping list.
type Category int

const (
	Produce Category = iota
	MeatSeafood
	Pantry
	DairyEgg
	Other
)

var categoryLabels = [...]string{
	"蔬菜水果",
	"肉类海鲜",
	"粮油调味",
	"蛋奶制品",
	"其他",
}

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{Produce, MeatSeafood, Pantry, DairyEgg, Other}
}

func (c Category) Valid() bool {
	return c >= Produce && c <= Other
}

// Label returns the display name used on lists and on the wire.
func (c Category) Label() string {
	if !c.Valid() {
		return categoryLabels[Other]
	}
	return categoryLabels[c]
}

func (c Category) String() string { return c.Label() }

// CategoryFromLabel maps a stored label back to its Category. Unknown
// labels resolve to Other, keeping classification total end to end.
func CategoryFromLabel(label string) Category {
	for i, l := range categoryLabels {
		if l == label {
			return Category(i)
		}
	}
	return Other
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category: %d", int(c))
	}
	return []byte(categoryLabels[c]), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	*c = CategoryFromLabel(string(text))
	return nil
}

// Categorize returns the shopping category for an ingredient name. It is
// total: matching is case-insensitive substring lookup over the ordered
// keyword table, and anything unmatched (including the empty string)
// falls back to Other.
//
// Keyword matching is deterministic but not semantically exact: 蛋糕
// lands in 蛋奶制品 because it contains 蛋. Fixing individual false
// positives would change established list contents, so the table is only
// ever extended, not reordered.
func Categorize(name string) Category {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Other
	}
	for _, rule := range keywordRules {
		if strings.Contains(n, rule.keyword) {
			return rule.category
		}
	}
	return Other
}

type keywordRule struct {
	keyword  string
	category Category
}

// Rules are grouped by category in priority order (produce, then meat,
// then pantry, then dairy/egg); first match wins. Within a group, longer
// or more specific keywords come before the generic ones they contain,
// and the egg compounds jump the queue entirely so the bare poultry
// keywords cannot swallow them.
var keywordRules = []keywordRule{
	// 蔬菜水果
	{"西红柿", Produce},
	{"番茄", Produce},
	{"土豆", Produce},
	{"马铃薯", Produce},
	{"黄瓜", Produce},
	{"茄子", Produce},
	{"青椒", Produce},
	{"辣椒", Produce},
	{"白菜", Produce},
	{"油麦菜", Produce},
	{"油菜", Produce},
	{"菠菜", Produce},
	{"生菜", Produce},
	{"芹菜", Produce},
	{"韭菜", Produce},
	{"香菜", Produce},
	{"胡萝卜", Produce},
	{"萝卜", Produce},
	{"洋葱", Produce},
	{"大葱", Produce},
	{"小葱", Produce},
	{"葱", Produce},
	{"姜", Produce},
	{"蒜", Produce},
	{"西兰花", Produce},
	{"菜花", Produce},
	{"豆角", Produce},
	{"四季豆", Produce},
	{"豆芽", Produce},
	{"豆腐", Produce},
	{"蘑菇", Produce},
	{"香菇", Produce},
	{"金针菇", Produce},
	{"木耳", Produce},
	{"冬瓜", Produce},
	{"南瓜", Produce},
	{"丝瓜", Produce},
	{"苦瓜", Produce},
	{"莲藕", Produce},
	{"山药", Produce},
	{"玉米", Produce},
	{"苹果", Produce},
	{"香蕉", Produce},
	{"橙", Produce},
	{"橘", Produce},
	{"柠檬", Produce},
	{"草莓", Produce},
	{"葡萄", Produce},
	{"西瓜", Produce},
	{"芒果", Produce},
	{"菠萝", Produce},
	{"sweet potato", Produce},
	{"bell pepper", Produce},
	{"tomato", Produce},
	{"potato", Produce},
	{"cucumber", Produce},
	{"onion", Produce},
	{"garlic", Produce},
	{"spinach", Produce},
	{"lettuce", Produce},
	{"broccoli", Produce},
	{"carrot", Produce},
	{"celery", Produce},
	{"mushroom", Produce},
	{"apple", Produce},
	{"banana", Produce},
	{"orange", Produce},
	{"lemon", Produce},
	{"berries", Produce},
	{"berry", Produce},

	// 蛋奶制品: egg compounds. These must sit ahead of the meat group,
	// whose bare 鸡/鸭 keywords would otherwise claim 鸡蛋 and 鸭蛋.
	{"鸡蛋", DairyEgg},
	{"鸭蛋", DairyEgg},
	{"鹌鹑蛋", DairyEgg},
	{"皮蛋", DairyEgg},
	{"咸蛋", DairyEgg},

	// 肉类海鲜
	{"五花肉", MeatSeafood},
	{"排骨", MeatSeafood},
	{"猪肉", MeatSeafood},
	{"牛肉", MeatSeafood},
	{"羊肉", MeatSeafood},
	{"鸡翅", MeatSeafood},
	{"鸡腿", MeatSeafood},
	{"鸡胸", MeatSeafood},
	{"鸡", MeatSeafood},
	{"鸭", MeatSeafood},
	{"三文鱼", MeatSeafood},
	{"带鱼", MeatSeafood},
	{"鱿鱼", MeatSeafood},
	{"鱼", MeatSeafood},
	{"虾", MeatSeafood},
	{"蟹", MeatSeafood},
	{"培根", MeatSeafood},
	{"香肠", MeatSeafood},
	{"火腿", MeatSeafood},
	{"肉", MeatSeafood},
	{"chicken", MeatSeafood},
	{"beef", MeatSeafood},
	{"pork", MeatSeafood},
	{"lamb", MeatSeafood},
	{"bacon", MeatSeafood},
	{"sausage", MeatSeafood},
	{"salmon", MeatSeafood},
	{"shrimp", MeatSeafood},
	{"fish", MeatSeafood},

	// 粮油调味
	{"生抽", Pantry},
	{"老抽", Pantry},
	{"酱油", Pantry},
	{"蚝油", Pantry},
	{"耗油", Pantry},
	{"香油", Pantry},
	{"麻油", Pantry},
	{"花生油", Pantry},
	{"菜籽油", Pantry},
	{"橄榄油", Pantry},
	{"食用油", Pantry},
	{"豆瓣酱", Pantry},
	{"甜面酱", Pantry},
	{"酱", Pantry},
	{"盐", Pantry},
	{"白糖", Pantry},
	{"冰糖", Pantry},
	{"红糖", Pantry},
	{"糖", Pantry},
	{"醋", Pantry},
	{"料酒", Pantry},
	{"淀粉", Pantry},
	{"面粉", Pantry},
	{"大米", Pantry},
	{"小米", Pantry},
	{"糯米", Pantry},
	{"米", Pantry},
	{"挂面", Pantry},
	{"面条", Pantry},
	{"粉丝", Pantry},
	{"粉条", Pantry},
	{"胡椒", Pantry},
	{"花椒", Pantry},
	{"八角", Pantry},
	{"桂皮", Pantry},
	{"香叶", Pantry},
	{"孜然", Pantry},
	{"芝麻", Pantry},
	{"蜂蜜", Pantry},
	{"味精", Pantry},
	{"peanut butter", Pantry},
	{"olive oil", Pantry},
	{"soy sauce", Pantry},
	{"sauce", Pantry},
	{"vinegar", Pantry},
	{"flour", Pantry},
	{"rice", Pantry},
	{"noodle", Pantry},
	{"sugar", Pantry},
	{"salt", Pantry},
	{"honey", Pantry},

	// 蛋奶制品 (egg compounds are listed ahead of the meat group above)
	{"蛋", DairyEgg},
	{"牛奶", DairyEgg},
	{"酸奶", DairyEgg},
	{"奶酪", DairyEgg},
	{"芝士", DairyEgg},
	{"黄油", DairyEgg},
	{"奶油", DairyEgg},
	{"奶", DairyEgg},
	{"egg", DairyEgg},
	{"milk", DairyEgg},
	{"yogurt", DairyEgg},
	{"cheese", DairyEgg},
	{"butter", DairyEgg},
	{"cream", DairyEgg},
}
