package middleware

import (
	"fmt"
	"log"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// Recovery recovers from panics in a request handler and logs the stack
// trace instead of crashing the process.
func Recovery() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf("\n========== PANIC RECOVERED ==========\n")
			log.Printf("Error: %v\n", e)
			log.Printf("Path: %s\n", c.Path())
			log.Printf("Method: %s\n", c.Method())
			log.Printf("\nStack Trace:\n%s\n", debug.Stack())
			log.Printf("=====================================\n\n")
			c.Locals("panic_error", fmt.Sprintf("%v", e))
		},
	})
}
