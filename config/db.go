package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"hotel-pms/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "hotel_pms")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return err
	}

	DB = db

	// AutoMigrate in parent->child order.
	if err := DB.AutoMigrate(
		&models.RoomType{},
		&models.Room{},
		&models.Customer{},
		&models.Service{},
		&models.InventoryItem{},
		&models.InventoryConsumption{},
		&models.Booking{},
		&models.RoomLine{},
		&models.ServiceLine{},
		&models.Payment{},
	); err != nil {
		return err
	}

	SeedDatabase()
	return nil
}

func SeedDatabase() {
	// ---------------- RoomTypes ----------------
	var rtCount int64
	DB.Model(&models.RoomType{}).Count(&rtCount)
	if rtCount == 0 {
		roomTypes := []models.RoomType{
			{TypeName: "Standard", Description: "Standard Room", Capacity: 2, MaxGuests: 2, PricePerNight: 900, ExtraBedAllowed: false},
			{TypeName: "Superior", Description: "Superior Room", Capacity: 2, MaxGuests: 3, PricePerNight: 1200, ExtraBedAllowed: true, ExtraBedPrice: 300},
			{TypeName: "Deluxe", Description: "Deluxe Room", Capacity: 2, MaxGuests: 4, PricePerNight: 1800, ExtraBedAllowed: true, ExtraBedPrice: 350},
			{TypeName: "Family Suite", Description: "Family Suite", Capacity: 4, MaxGuests: 6, PricePerNight: 3200, ExtraBedAllowed: true, ExtraBedPrice: 400},
		}
		if err := DB.Create(&roomTypes).Error; err != nil {
			log.Printf("warning: failed to seed room types: %v", err)
		} else {
			log.Println("RoomTypes seeded")
		}
	}

	// ---------------- Rooms ----------------
	var roomCount int64
	DB.Model(&models.Room{}).Count(&roomCount)
	if roomCount == 0 {
		var types []models.RoomType
		DB.Order("id asc").Find(&types)
		if len(types) > 0 {
			rooms := make([]models.Room, 0, 16)
			for i, rt := range types {
				floor := i + 1
				for n := 1; n <= 4; n++ {
					rooms = append(rooms, models.Room{
						RoomTypeID:         rt.ID,
						RoomNumber:         fmt.Sprintf("%d%02d", floor, n),
						Floor:              fmt.Sprintf("%d", floor),
						Status:             models.RoomAvailable,
						HousekeepingStatus: models.HousekeepingClean,
					})
				}
			}
			if err := DB.Create(&rooms).Error; err != nil {
				log.Printf("warning: failed to seed rooms: %v", err)
			} else {
				log.Println("Rooms seeded")
			}
		}
	}

	// ---------------- Inventory ----------------
	var invCount int64
	DB.Model(&models.InventoryItem{}).Count(&invCount)
	if invCount == 0 {
		items := []models.InventoryItem{
			{Name: "Drinking Water", Unit: "bottle", Stock: 200},
			{Name: "Soft Drink", Unit: "can", Stock: 120},
			{Name: "Beer", Unit: "can", Stock: 80},
			{Name: "Snack Pack", Unit: "pack", Stock: 100},
		}
		if err := DB.Create(&items).Error; err != nil {
			log.Printf("warning: failed to seed inventory items: %v", err)
		} else {
			log.Println("Inventory items seeded")
		}
	}

	// ---------------- Services ----------------
	var svcCount int64
	DB.Model(&models.Service{}).Count(&svcCount)
	if svcCount == 0 {
		var water, softDrink models.InventoryItem
		DB.Where("name = ?", "Drinking Water").First(&water)
		DB.Where("name = ?", "Soft Drink").First(&softDrink)

		svcs := []models.Service{
			{Name: "Laundry", Category: models.ServicePerUnit, Price: 60},
			{Name: "Bicycle Rental", Category: models.ServicePerDuration, Price: 150},
			{Name: "Breakfast", Category: models.ServicePerPerson, Price: 180},
			{Name: "Late Checkout", Category: models.ServiceFixed, Price: 500},
			{Name: "Airport Shuttle", Category: models.ServiceTransportation, Price: 800},
		}
		if water.ID != 0 {
			itemID := water.ID
			svcs = append(svcs, models.Service{Name: "Minibar Water", Category: models.ServiceMinibar, Price: 30, InventoryItemID: &itemID})
		}
		if softDrink.ID != 0 {
			itemID := softDrink.ID
			svcs = append(svcs, models.Service{Name: "Minibar Soft Drink", Category: models.ServiceMinibar, Price: 50, InventoryItemID: &itemID})
		}

		if err := DB.Create(&svcs).Error; err != nil {
			log.Printf("warning: failed to seed services: %v", err)
		} else {
			log.Println("Services seeded")
		}
	}
}
