package service

import "fmt"

// Message templates, one per event kind and destination. The backticks and
// asterisks are literal text; messages are never parsed as markup by the
// dispatcher.

func helpNeededText(device string) string {
	return fmt.Sprintf("`%s` was taken without being checked out! Please remember to enter your name or ID "+
		"after taking a device.", device)
}

func userReminderText(elapsed, device string) string {
	return fmt.Sprintf("It's been *%s* since you checked out `%s`. Please renew your checkout online or return it "+
		"to the device lab.", elapsed, device)
}

func checkOutUserText(device string, expiryDays int) string {
	return fmt.Sprintf("You checked out `%s`. Checkout will expire after %d days. Remember to plug the "+
		"device back in when you return it to the lab. You can renew your checkout from "+
		"the DeviceNanny web page.", device, expiryDays)
}

func checkOutChannelText(firstName, lastName, device string) string {
	return fmt.Sprintf("*%s %s* just checked out `%s`", firstName, lastName, device)
}

func checkInUserText(device string) string {
	return fmt.Sprintf("You checked in `%s`. Thanks!", device)
}

func checkInChannelText(firstName, lastName, device string) string {
	return fmt.Sprintf("*%s %s* just checked in `%s`", firstName, lastName, device)
}

func channelExpiryText(device, elapsed, firstName, lastName string) string {
	return fmt.Sprintf("`%s` was checked out *%s* ago by *%s %s*", device, elapsed, firstName, lastName)
}

func nannyCheckInText(device string) string {
	return fmt.Sprintf("`%s` was checked in by the Nanny.", device)
}

func missingDeviceText(device, elapsed string) string {
	return fmt.Sprintf("`%s` has been missing from the device lab for `%s`. If you have it, please return the "+
		"device to the lab and check it out under your name.", device, elapsed)
}
