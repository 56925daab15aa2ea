// storefront 店铺客户端命令行：表单校验、购物车、收藏夹，以及本地开发用的模拟后端
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
