package i18n

// Supported languages: en (English), hi (Hindi), ru (Russian), tr (Turkish).
var supported = map[string]bool{"en": true, "hi": true, "ru": true, "tr": true}

// translations maps message key → language code → format string.
var translations = map[string]map[string]string{

	// ─── Seat inventory ──────────────────────────────────────────────────────
	"booking.error.insufficient_seats": {
		"en": "Not enough seats left on this ride. Please choose fewer seats or another ride.",
		"hi": "इस राइड में पर्याप्त सीटें नहीं बची हैं। कृपया कम सीटें या कोई दूसरी राइड चुनें।",
		"ru": "В этой поездке недостаточно свободных мест. Выберите меньше мест или другую поездку.",
		"tr": "Bu yolculukta yeterli koltuk kalmadı. Lütfen daha az koltuk veya başka bir yolculuk seçin.",
	},
	"booking.error.ride_not_active": {
		"en": "This ride is no longer accepting bookings.",
		"hi": "यह राइड अब बुकिंग स्वीकार नहीं कर रही है।",
		"ru": "Эта поездка больше не принимает бронирования.",
		"tr": "Bu yolculuk artık rezervasyon kabul etmiyor.",
	},
	"booking.error.invalid_seat_count": {
		"en": "Please book at least one seat.",
		"hi": "कृपया कम से कम एक सीट बुक करें।",
		"ru": "Забронируйте хотя бы одно место.",
		"tr": "Lütfen en az bir koltuk ayırın.",
	},
	"booking.error.not_modifiable": {
		"en": "This booking can no longer be changed.",
		"hi": "इस बुकिंग को अब बदला नहीं जा सकता।",
		"ru": "Это бронирование больше нельзя изменить.",
		"tr": "Bu rezervasyon artık değiştirilemez.",
	},
	"booking.error.concurrency_conflict": {
		"en": "The booking was changed by another request. Please try again.",
		"hi": "बुकिंग किसी अन्य अनुरोध द्वारा बदल दी गई। कृपया पुनः प्रयास करें।",
		"ru": "Бронирование было изменено другим запросом. Попробуйте ещё раз.",
		"tr": "Rezervasyon başka bir istek tarafından değiştirildi. Lütfen tekrar deneyin.",
	},
	"booking.error.not_found": {
		"en": "Booking not found.",
		"hi": "बुकिंग नहीं मिली।",
		"ru": "Бронирование не найдено.",
		"tr": "Rezervasyon bulunamadı.",
	},
	"ride.error.not_found": {
		"en": "Ride not found.",
		"hi": "राइड नहीं मिली।",
		"ru": "Поездка не найдена.",
		"tr": "Yolculuk bulunamadı.",
	},
	"ride.error.not_modifiable": {
		"en": "This ride has already finished and cannot be changed.",
		"hi": "यह राइड पहले ही समाप्त हो चुकी है और बदली नहीं जा सकती।",
		"ru": "Эта поездка уже завершена и не может быть изменена.",
		"tr": "Bu yolculuk zaten tamamlandı ve değiştirilemez.",
	},

	// ─── Accounts ────────────────────────────────────────────────────────────
	"account.error.banned": {
		"en": "Your account has been suspended. Please contact support.",
		"hi": "आपका खाता निलंबित कर दिया गया है। कृपया सहायता से संपर्क करें।",
		"ru": "Ваш аккаунт заблокирован. Обратитесь в поддержку.",
		"tr": "Hesabınız askıya alındı. Lütfen destek ile iletişime geçin.",
	},
	"driver.error.not_verified": {
		"en": "Your driver profile is awaiting verification.",
		"hi": "आपकी ड्राइवर प्रोफ़ाइल सत्यापन की प्रतीक्षा में है।",
		"ru": "Ваш профиль водителя ожидает проверки.",
		"tr": "Sürücü profiliniz doğrulama bekliyor.",
	},

	// ─── Reviews ─────────────────────────────────────────────────────────────
	"review.error.duplicate": {
		"en": "You have already reviewed this trip.",
		"hi": "आप इस यात्रा की समीक्षा पहले ही कर चुके हैं।",
		"ru": "Вы уже оставили отзыв об этой поездке.",
		"tr": "Bu yolculuğu zaten değerlendirdiniz.",
	},

	// ─── Status strings ──────────────────────────────────────────────────────
	// %s = formatted amount
	"earnings.summary": {
		"en": "You have earned %s from completed rides",
		"hi": "आपने पूरी की गई राइड से %s कमाए हैं",
		"ru": "Ваш заработок за завершённые поездки: %s",
		"tr": "Tamamlanan yolculuklardan %s kazandınız",
	},
	"rating.none": {
		"en": "No ratings yet",
		"hi": "अभी तक कोई रेटिंग नहीं",
		"ru": "Пока нет оценок",
		"tr": "Henüz değerlendirme yok",
	},
}
