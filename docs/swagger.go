package docs

// @title Next Read API
// @version 1.0
// @description 「下一篇推荐」组件后端：基于读者画像的 LLM 推荐代理与线索提交代理
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http https
