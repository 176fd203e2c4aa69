// @title           Classifieds API
// @version         1.0
// @description     Объявления: пользователи, токены X-Token, поиск.
// @BasePath        /
// @securityDefinitions.apikey XToken
// @in header
// @name X-Token

package main

import "classifieds_backend/internal/app"

func main() {
	app.Run()
}
