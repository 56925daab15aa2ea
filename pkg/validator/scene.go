package validator

import "strings"

// ValidateScene 验证场景标识符，使用位运算支持场景组合
//
// 同一个表单在"新建"和"编辑"时规则可能不同，例如商品图片在新建时必填、编辑时可选。
// 规则通过 InScenes 绑定到一个或多个场景，编排器只执行与当前场景有交集的规则。
//
//	rule := validator.File("productImage", "Product image", 5<<20, imageTypes).InScenes(SceneCreate)
//	form := validator.NewOrchestrator("product", validator.WithScene(SceneUpdate)) // 图片规则被跳过
type ValidateScene int64

// 预定义场景
const (
	SceneNone   ValidateScene = 0
	SceneCreate ValidateScene = 1 << 0 // 新建
	SceneUpdate ValidateScene = 1 << 1 // 编辑
	SceneQuery  ValidateScene = 1 << 2 // 查询/筛选（报表）

	SceneAll ValidateScene = -1 // 所有场景(111...111)
)

// Has 判断场景是否与目标场景有交集
// SceneNone 视为"未限定"，与任何场景匹配
func (s ValidateScene) Has(target ValidateScene) bool {
	if s == SceneNone || target == SceneNone {
		return true
	}
	return s&target != 0
}

// String 返回可读的场景名称，组合场景用 "|" 连接
func (s ValidateScene) String() string {
	switch s {
	case SceneNone:
		return "none"
	case SceneAll:
		return "all"
	}

	var parts []string
	if s&SceneCreate != 0 {
		parts = append(parts, "create")
	}
	if s&SceneUpdate != 0 {
		parts = append(parts, "update")
	}
	if s&SceneQuery != 0 {
		parts = append(parts, "query")
	}
	if len(parts) == 0 {
		return "custom"
	}
	return strings.Join(parts, "|")
}

// ParseScene 从名称解析场景，未知名称返回 false
func ParseScene(name string) (ValidateScene, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "all":
		return SceneAll, true
	case "create", "new":
		return SceneCreate, true
	case "update", "edit":
		return SceneUpdate, true
	case "query", "filter":
		return SceneQuery, true
	}
	return SceneNone, false
}
